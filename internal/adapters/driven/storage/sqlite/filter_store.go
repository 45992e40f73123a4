package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// ==================== Filter Store ====================

// filterStore implements driven.FilterStore over the queries table.
type filterStore struct {
	store *Store
}

var _ driven.FilterStore = (*filterStore)(nil)

// SaveFilter upserts a filter. An existing watermark is replaced.
func (s *filterStore) SaveFilter(ctx context.Context, f domain.Filter) error {
	if f.Expr == "" {
		return fmt.Errorf("empty filter: %w", domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO queries (filter, description, last_updated) VALUES (?, ?, ?)
		ON CONFLICT(filter) DO UPDATE SET
			description = excluded.description,
			last_updated = excluded.last_updated
	`, f.Expr, f.Description, nullString(f.LastUpdated))
	if err != nil {
		return fmt.Errorf("saving filter: %w", err)
	}
	return nil
}

// GetFilter retrieves a filter by expression.
func (s *filterStore) GetFilter(ctx context.Context, expr string) (*domain.Filter, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT filter, description, last_updated FROM queries WHERE filter = ?", expr)
	return scanFilter(row)
}

// DeleteFilter removes a filter.
func (s *filterStore) DeleteFilter(ctx context.Context, expr string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM queries WHERE filter = ?", expr)
	if err != nil {
		return fmt.Errorf("deleting filter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListFilters returns every filter ordered by expression.
func (s *filterStore) ListFilters(ctx context.Context) ([]domain.Filter, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT filter, description, last_updated FROM queries ORDER BY filter")
	if err != nil {
		return nil, fmt.Errorf("listing filters: %w", err)
	}
	defer rows.Close()

	var filters []domain.Filter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, *f)
	}
	return filters, rows.Err()
}

// SetLastUpdated moves the watermark of a filter.
func (s *filterStore) SetLastUpdated(ctx context.Context, expr, date string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE queries SET last_updated = ? WHERE filter = ?", nullString(date), expr)
	if err != nil {
		return fmt.Errorf("updating watermark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanFilter(row rowScanner) (*domain.Filter, error) {
	var f domain.Filter
	var desc, last sql.NullString
	if err := row.Scan(&f.Expr, &desc, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning filter: %w", err)
	}
	f.Description = desc.String
	f.LastUpdated = last.String
	return &f, nil
}

// ==================== Directory Store ====================

// directoryStore implements driven.DirectoryStore.
type directoryStore struct {
	store *Store
}

var _ driven.DirectoryStore = (*directoryStore)(nil)

// SaveDirectory upserts a directory and its last index date.
func (s *directoryStore) SaveDirectory(ctx context.Context, d domain.Directory) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO directories (path, last_updated) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET last_updated = excluded.last_updated
	`, d.Path, nullString(d.LastUpdated))
	if err != nil {
		return fmt.Errorf("saving directory: %w", err)
	}
	return nil
}

// ListDirectories returns every indexed directory ordered by path.
func (s *directoryStore) ListDirectories(ctx context.Context) ([]domain.Directory, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT path, last_updated FROM directories ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("listing directories: %w", err)
	}
	defer rows.Close()

	var dirs []domain.Directory
	for rows.Next() {
		var d domain.Directory
		var last sql.NullString
		if err := rows.Scan(&d.Path, &last); err != nil {
			return nil, fmt.Errorf("scanning directory: %w", err)
		}
		d.LastUpdated = last.String
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

// DeleteDirectory forgets a directory. Its documents are kept.
func (s *directoryStore) DeleteDirectory(ctx context.Context, path string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM directories WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting directory: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
