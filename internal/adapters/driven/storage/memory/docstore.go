package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.SearchEngine  = (*DocumentStore)(nil)
	_ driven.VectorIndex   = (*VectorIndex)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It also serves as a SearchEngine (term counting); VectorIndex gives a
// brute-force cosine view over the same documents.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	order     []string
	model     string
	dims      int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
	}
}

// AddDocument stores a document unless its SourceID is already present.
func (s *DocumentStore) AddDocument(_ context.Context, doc *domain.Document) (bool, error) {
	if doc == nil || doc.SourceID == "" {
		return false, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.SourceID]; ok {
		return false, nil
	}
	s.documents[doc.SourceID] = *doc
	s.order = append(s.order, doc.SourceID)
	return true, nil
}

// Exists checks source ids and metadata "id" values.
func (s *DocumentStore) Exists(_ context.Context, ids ...string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ids {
		if _, ok := s.documents[id]; ok {
			return true, nil
		}
		for _, doc := range s.documents {
			if v, ok := doc.Metadata["id"].(string); ok && v == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// GetDocument retrieves a document by SourceID.
func (s *DocumentStore) GetDocument(_ context.Context, sourceID string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocuments retrieves documents in the order requested.
func (s *DocumentStore) GetDocuments(_ context.Context, sourceIDs []string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for _, id := range sourceIDs {
		if doc, ok := s.documents[id]; ok {
			result = append(result, doc)
		}
	}
	return result, nil
}

// DeleteDocument removes a document.
func (s *DocumentStore) DeleteDocument(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[sourceID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, sourceID)
	for i, id := range s.order {
		if id == sourceID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListDocuments returns documents in insertion order, without vectors.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Document, 0, len(s.order))
	for _, id := range s.order {
		doc := s.documents[id]
		doc.Embedding = nil
		result = append(result, doc)
	}
	return result, nil
}

// Count returns the number of documents.
func (s *DocumentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// Search ranks documents by the number of query terms they contain.
// BM25 is the negated count so lower stays better.
func (s *DocumentStore) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, domain.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.SearchHit
	for _, id := range s.order {
		text := strings.ToLower(s.documents[id].Text)
		n := 0
		for _, term := range terms {
			n += strings.Count(text, term)
		}
		if n > 0 {
			hits = append(hits, driven.SearchHit{SourceID: id, BM25: -float64(n), Snippet: s.documents[id].Text})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].BM25 != hits[j].BM25 {
			return hits[i].BM25 < hits[j].BM25
		}
		return hits[i].SourceID < hits[j].SourceID
	})
	if len(hits) > limit {
		hits = hits[:max(limit, 0)]
	}
	return hits, nil
}

// VectorIndex returns the vector view of this store.
func (s *DocumentStore) VectorIndex() *VectorIndex {
	return &VectorIndex{s: s}
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
type VectorIndex struct {
	s *DocumentStore
}

// Search returns the k nearest documents by cosine distance.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	s := v.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []driven.VectorHit
	for _, id := range s.order {
		emb := s.documents[id].Embedding
		if emb == nil {
			continue
		}
		if len(emb) != len(query) {
			return nil, fmt.Errorf("dimension mismatch %d != %d", len(emb), len(query))
		}
		hits = append(hits, driven.VectorHit{SourceID: id, Distance: cosineDistance(emb, query)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].SourceID < hits[j].SourceID
	})
	if len(hits) > k {
		hits = hits[:max(k, 0)]
	}
	return hits, nil
}

// Update replaces a document's vector.
func (v *VectorIndex) Update(_ context.Context, sourceID string, embedding []float32) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[sourceID]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Embedding = embedding
	s.documents[sourceID] = doc
	return nil
}

// Declare records the embedding model, rejecting a change once populated.
func (v *VectorIndex) Declare(_ context.Context, model string, dims int) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == "" || len(s.documents) == 0 {
		s.model, s.dims = model, dims
		return nil
	}
	if s.model != model || s.dims != dims {
		return domain.ErrEmbeddingMismatch
	}
	return nil
}

// Redeclare overwrites the recorded model.
func (v *VectorIndex) Redeclare(_ context.Context, model string, dims int) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.model, v.s.dims = model, dims
	return nil
}

// Model returns the declared model and dimensions.
func (v *VectorIndex) Model() (string, int) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return v.s.model, v.s.dims
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
