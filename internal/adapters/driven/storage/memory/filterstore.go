package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.FilterStore    = (*FilterStore)(nil)
	_ driven.DirectoryStore = (*DirectoryStore)(nil)
)

// FilterStore is an in-memory implementation of driven.FilterStore.
type FilterStore struct {
	mu      sync.RWMutex
	filters map[string]domain.Filter
}

// NewFilterStore creates a new in-memory filter store.
func NewFilterStore() *FilterStore {
	return &FilterStore{filters: make(map[string]domain.Filter)}
}

// SaveFilter upserts a filter.
func (s *FilterStore) SaveFilter(_ context.Context, f domain.Filter) error {
	if f.Expr == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters[f.Expr] = f
	return nil
}

// GetFilter retrieves a filter.
func (s *FilterStore) GetFilter(_ context.Context, expr string) (*domain.Filter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.filters[expr]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

// DeleteFilter removes a filter.
func (s *FilterStore) DeleteFilter(_ context.Context, expr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[expr]; !ok {
		return domain.ErrNotFound
	}
	delete(s.filters, expr)
	return nil
}

// ListFilters returns filters ordered by expression.
func (s *FilterStore) ListFilters(_ context.Context) ([]domain.Filter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Filter, 0, len(s.filters))
	for _, f := range s.filters {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Expr < result[j].Expr })
	return result, nil
}

// SetLastUpdated moves a filter's watermark.
func (s *FilterStore) SetLastUpdated(_ context.Context, expr, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filters[expr]
	if !ok {
		return domain.ErrNotFound
	}
	f.LastUpdated = date
	s.filters[expr] = f
	return nil
}

// DirectoryStore is an in-memory implementation of driven.DirectoryStore.
type DirectoryStore struct {
	mu   sync.RWMutex
	dirs map[string]domain.Directory
}

// NewDirectoryStore creates a new in-memory directory store.
func NewDirectoryStore() *DirectoryStore {
	return &DirectoryStore{dirs: make(map[string]domain.Directory)}
}

// SaveDirectory upserts a directory.
func (s *DirectoryStore) SaveDirectory(_ context.Context, d domain.Directory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[d.Path] = d
	return nil
}

// ListDirectories returns directories ordered by path.
func (s *DirectoryStore) ListDirectories(_ context.Context) ([]domain.Directory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Directory, 0, len(s.dirs))
	for _, d := range s.dirs {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// DeleteDirectory forgets a directory.
func (s *DirectoryStore) DeleteDirectory(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dirs[path]; !ok {
		return domain.ErrNotFound
	}
	delete(s.dirs, path)
	return nil
}
