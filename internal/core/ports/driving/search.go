package driving

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// SearchService provides retrieval over the stored corpus.
type SearchService interface {
	// VectorSearch returns the n documents nearest to the query embedding.
	// With rerank, the candidates are re-ordered by a cross-encoder.
	VectorSearch(ctx context.Context, query string, n int, rerank bool) ([]domain.SearchResult, error)

	// FulltextSearch runs an FTS5 query and returns n hits with snippets.
	FulltextSearch(ctx context.Context, query string, n int) ([]domain.SearchResult, error)

	// Similar returns the n documents nearest to a stored document,
	// excluding the document itself.
	Similar(ctx context.Context, sourceID string, n int) ([]domain.SearchResult, error)

	// HybridSearch fuses a vector query and a full-text query.
	HybridSearch(ctx context.Context, vectorQuery, textQuery string, n int) ([]domain.SearchResult, error)

	// IterativeSearch alternates vector search with one-hop expansion of
	// every result until the result set stops changing.
	IterativeSearch(ctx context.Context, query string, n, maxSteps int) (*domain.IterativeResult, error)
}
