package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// tagStore implements driven.TagStore.
type tagStore struct {
	store *Store
}

var _ driven.TagStore = (*tagStore)(nil)

// AddTags attaches tags to a stored document, creating unknown tags.
func (s *tagStore) AddTags(ctx context.Context, sourceID string, tags []string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM sources WHERE source = ?", sourceID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("source %s: %w", sourceID, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up source: %w", err)
	}

	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (tag) VALUES (?)", tag); err != nil {
			return fmt.Errorf("creating tag %s: %w", tag, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO source_tag (source_id, tag_id)
			SELECT ?, id FROM tags WHERE tag = ?
		`, id, tag); err != nil {
			return fmt.Errorf("tagging %s: %w", sourceID, err)
		}
	}
	return tx.Commit()
}

// RemoveTags detaches tags from a document. Tags stay defined.
func (s *tagStore) RemoveTags(ctx context.Context, sourceID string, tags []string) error {
	for _, tag := range tags {
		_, err := s.store.db.ExecContext(ctx, `
			DELETE FROM source_tag
			WHERE source_id = (SELECT id FROM sources WHERE source = ?)
			  AND tag_id = (SELECT id FROM tags WHERE tag = ?)
		`, sourceID, tag)
		if err != nil {
			return fmt.Errorf("untagging %s: %w", sourceID, err)
		}
	}
	return nil
}

// DeleteTag removes a tag everywhere.
func (s *tagStore) DeleteTag(ctx context.Context, tag string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM tags WHERE tag = ?", tag)
	if err != nil {
		return fmt.Errorf("deleting tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tag %s: %w", tag, domain.ErrNotFound)
	}
	return nil
}

// ListTags returns every tag with its document count.
func (s *tagStore) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.tag, COUNT(st.source_id)
		FROM tags t LEFT JOIN source_tag st ON st.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.tag
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Tagged returns the documents carrying tag, in insertion order.
func (s *tagStore) Tagged(ctx context.Context, tag string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT s.source, s.text, s.extra, NULL, s.date_added FROM sources s
		JOIN source_tag st ON st.source_id = s.id
		JOIN tags t ON t.id = st.tag_id
		WHERE t.tag = ?
		ORDER BY s.id
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("querying tagged documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// TagsFor returns the tags of one document, sorted.
func (s *tagStore) TagsFor(ctx context.Context, sourceID string) ([]string, error) {
	return s.strings(ctx, `
		SELECT t.tag FROM tags t
		JOIN source_tag st ON st.tag_id = t.id
		JOIN sources s ON s.id = st.source_id
		WHERE s.source = ?
		ORDER BY t.tag
	`, sourceID)
}

func (s *tagStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
