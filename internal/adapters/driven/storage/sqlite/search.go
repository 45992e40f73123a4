package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// searchEngine implements driven.SearchEngine over the fulltext FTS5 table.
type searchEngine struct {
	store *Store
}

var _ driven.SearchEngine = (*searchEngine)(nil)

// Search runs an FTS5 MATCH query. Lower BM25 is better, matching
// SQLite's bm25() sign convention.
func (e *searchEngine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := e.store.db.QueryContext(ctx, `
		SELECT source, bm25(fulltext), snippet(fulltext, 1, '', '', '…', 16)
		FROM fulltext
		WHERE fulltext MATCH ?
		ORDER BY rank, source
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, wrapMatchError(err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var hit driven.SearchHit
		if err := rows.Scan(&hit.SourceID, &hit.BM25, &hit.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapMatchError(err)
	}
	return hits, nil
}

// wrapMatchError flags FTS5 query syntax errors as invalid input.
func wrapMatchError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "fts5") || strings.Contains(msg, "syntax error") ||
		strings.Contains(msg, "no such column") {
		return fmt.Errorf("full-text query %v: %w", err, domain.ErrInvalidInput)
	}
	return fmt.Errorf("full-text search: %w", err)
}
