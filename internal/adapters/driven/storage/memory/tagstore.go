package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure TagStore implements the interface.
var _ driven.TagStore = (*TagStore)(nil)

// TagStore is an in-memory implementation of driven.TagStore. It resolves
// documents through the DocumentStore it was built with.
type TagStore struct {
	mu    sync.RWMutex
	docs  *DocumentStore
	tags  map[string]map[string]struct{} // tag -> source ids
	order map[string]int                 // source id -> first tagged position
}

// NewTagStore creates a tag store over docs.
func NewTagStore(docs *DocumentStore) *TagStore {
	return &TagStore{
		docs:  docs,
		tags:  make(map[string]map[string]struct{}),
		order: make(map[string]int),
	}
}

// AddTags attaches tags to an existing document.
func (s *TagStore) AddTags(ctx context.Context, sourceID string, tags []string) error {
	if _, err := s.docs.GetDocument(ctx, sourceID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if s.tags[tag] == nil {
			s.tags[tag] = make(map[string]struct{})
		}
		s.tags[tag][sourceID] = struct{}{}
	}
	if _, ok := s.order[sourceID]; !ok {
		s.order[sourceID] = len(s.order)
	}
	return nil
}

// RemoveTags detaches tags from a document.
func (s *TagStore) RemoveTags(_ context.Context, sourceID string, tags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		delete(s.tags[tag], sourceID)
	}
	return nil
}

// DeleteTag removes a tag.
func (s *TagStore) DeleteTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[tag]; !ok {
		return domain.ErrNotFound
	}
	delete(s.tags, tag)
	return nil
}

// ListTags returns tags with counts, sorted by name.
func (s *TagStore) ListTags(_ context.Context) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Tag, 0, len(s.tags))
	for tag, ids := range s.tags {
		result = append(result, domain.Tag{Name: tag, Count: len(ids)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Tagged returns the documents carrying tag.
func (s *TagStore) Tagged(ctx context.Context, tag string) ([]domain.Document, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.tags[tag]))
	for id := range s.tags[tag] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
	s.mu.RUnlock()
	return s.docs.GetDocuments(ctx, ids)
}

// TagsFor returns the sorted tags of a document.
func (s *TagStore) TagsFor(_ context.Context, sourceID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []string
	for tag, ids := range s.tags {
		if _, ok := ids[sourceID]; ok {
			result = append(result, tag)
		}
	}
	sort.Strings(result)
	return result, nil
}
