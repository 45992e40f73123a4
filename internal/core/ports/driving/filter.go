package driving

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// FilterService manages saved OpenAlex filters.
type FilterService interface {
	// UpdateFilter ingests works matching expr created since lastUpdated
	// (empty means one year ago) and returns the newly added documents.
	// The stored watermark only advances after a complete replay.
	UpdateFilter(ctx context.Context, expr, lastUpdated string) ([]domain.Document, error)

	// UpdateFilters replays every saved filter.
	UpdateFilters(ctx context.Context) ([]domain.Document, error)

	// AddFilter saves a filter without running it.
	AddFilter(ctx context.Context, expr, description string) error

	// RemoveFilter deletes a saved filter.
	RemoveFilter(ctx context.Context, expr string) error

	// ListFilters returns every saved filter.
	ListFilters(ctx context.Context) ([]domain.Filter, error)

	// Watch validates that expr matches something, then saves it.
	Watch(ctx context.Context, expr, description string) error

	// Follow ingests an author's works and watches the author's ORCID.
	Follow(ctx context.Context, orcid string) error

	// WatchCiting watches for new works citing a work.
	WatchCiting(ctx context.Context, id string) error

	// WatchRelated watches for new works related to a work.
	WatchRelated(ctx context.Context, id string) error
}
