package driven

import "context"

// Reranker scores query/document pairs with a cross-encoder.
// This is an optional service - when nil, re-ranking is unavailable.
type Reranker interface {
	// Rerank returns one score per text, in input order. Higher is more
	// relevant.
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)

	// Close releases resources.
	Close() error
}
