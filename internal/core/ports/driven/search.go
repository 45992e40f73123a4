package driven

import "context"

// SearchEngine provides full-text search operations.
// Backed by an SQLite FTS5 table ranked with bm25.
type SearchEngine interface {
	// Search runs an FTS5 MATCH query and returns up to limit hits in
	// rank order (best first).
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// SearchHit represents a search result from the engine.
type SearchHit struct {
	// SourceID is the matched document.
	SourceID string

	// BM25 is the raw FTS5 bm25 value. Lower (more negative) is better.
	BM25 float64

	// Snippet is an excerpt around the matched terms.
	Snippet string
}
