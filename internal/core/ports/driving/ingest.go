package driving

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// Limit values for WorkOptions.Max* fields.
const (
	// Unlimited removes any cap.
	Unlimited = -1
)

// WorkOptions controls the one-hop expansion of AddWork.
type WorkOptions struct {
	// References ingests every work this work cites.
	References bool

	// Citing ingests works that cite this work.
	Citing bool

	// Related ingests OpenAlex related works.
	Related bool

	// Bypass skips the citing-count confirmation.
	Bypass bool

	// MaxReferences caps References. 0 or Unlimited means no cap.
	MaxReferences int

	// MaxCiting caps Citing. Unlimited fetches every citing work without
	// confirmation, a positive value is a hard cap without confirmation,
	// and 0 applies the citation count trigger.
	MaxCiting int

	// MaxRelated caps Related. 0 or Unlimited means no cap.
	MaxRelated int
}

// AllExpansions follows references, citing and related works.
func AllExpansions() WorkOptions {
	return WorkOptions{References: true, Citing: true, Related: true}
}

// IngestService adds documents to the store.
// Every writer is idempotent: re-adding a stored source changes nothing.
type IngestService interface {
	// AddSource stores a document unless its id already exists.
	// The embedding is only computed for new ids.
	AddSource(ctx context.Context, sourceID, text string, metadata map[string]any) (added bool, err error)

	// AddWork resolves a DOI or OpenAlex id and stores the work, then
	// expands one hop according to opts. A work that cannot be resolved is
	// logged and skipped.
	AddWork(ctx context.Context, id string, opts WorkOptions) error

	// AddWorks calls AddWork for each id, continuing past failures, and
	// returns the source ids the resolved works are stored under.
	AddWorks(ctx context.Context, ids []string, opts WorkOptions) ([]string, error)

	// AddAuthor stores every work of an author, with no further expansion.
	AddAuthor(ctx context.Context, id string) error

	// Get returns a stored document.
	Get(ctx context.Context, sourceID string) (*domain.Document, error)

	// Remove deletes documents by source id.
	Remove(ctx context.Context, sourceIDs []string) error

	// Reembed recomputes every stored vector with the configured model.
	// Returns the number of documents re-embedded.
	Reembed(ctx context.Context) (int, error)
}
