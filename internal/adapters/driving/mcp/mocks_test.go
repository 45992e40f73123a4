package mcp

import (
	"context"
	"fmt"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	lastN   int
}

func (m *mockSearchService) VectorSearch(_ context.Context, _ string, n int, _ bool) ([]domain.SearchResult, error) {
	m.lastN = n
	return m.copyResults(), m.err
}

func (m *mockSearchService) FulltextSearch(_ context.Context, _ string, n int) ([]domain.SearchResult, error) {
	m.lastN = n
	return m.copyResults(), m.err
}

func (m *mockSearchService) Similar(_ context.Context, _ string, n int) ([]domain.SearchResult, error) {
	m.lastN = n
	return m.copyResults(), m.err
}

func (m *mockSearchService) HybridSearch(_ context.Context, _, _ string, n int) ([]domain.SearchResult, error) {
	m.lastN = n
	return m.copyResults(), m.err
}

func (m *mockSearchService) IterativeSearch(_ context.Context, _ string, _, _ int) (*domain.IterativeResult, error) {
	return &domain.IterativeResult{Results: m.copyResults(), Rounds: 1}, m.err
}

func (m *mockSearchService) copyResults() []domain.SearchResult {
	if m.results == nil {
		return nil
	}
	return append([]domain.SearchResult(nil), m.results...)
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	docs map[string]*domain.Document
}

func (m *mockIngestService) AddSource(_ context.Context, _, _ string, _ map[string]any) (bool, error) {
	return false, nil
}

func (m *mockIngestService) AddWork(_ context.Context, _ string, _ driving.WorkOptions) error {
	return nil
}

func (m *mockIngestService) AddWorks(_ context.Context, _ []string, _ driving.WorkOptions) ([]string, error) {
	return nil, nil
}

func (m *mockIngestService) AddAuthor(_ context.Context, _ string) error {
	return nil
}

func (m *mockIngestService) Get(_ context.Context, sourceID string) (*domain.Document, error) {
	if doc, ok := m.docs[sourceID]; ok {
		return doc, nil
	}
	return nil, fmt.Errorf("%s: %w", sourceID, domain.ErrNotFound)
}

func (m *mockIngestService) Remove(_ context.Context, _ []string) error {
	return nil
}

func (m *mockIngestService) Reembed(_ context.Context) (int, error) {
	return 0, nil
}

// mockTagService is a mock implementation of driving.TagService.
type mockTagService struct {
	tags   []domain.Tag
	tagged map[string][]domain.Document
	err    error
}

func (m *mockTagService) AddTags(_ context.Context, _, _ []string) error    { return m.err }
func (m *mockTagService) RemoveTags(_ context.Context, _, _ []string) error { return m.err }
func (m *mockTagService) DeleteTags(_ context.Context, _ []string) error    { return m.err }

func (m *mockTagService) ListTags(_ context.Context) ([]domain.Tag, error) {
	return m.tags, m.err
}

func (m *mockTagService) Tagged(_ context.Context, tag string) ([]domain.Document, error) {
	return m.tagged[tag], m.err
}

// paper builds a work-like document.
func paper(id, title string, year int, authors ...string) domain.Document {
	ships := make([]any, len(authors))
	for i, a := range authors {
		ships[i] = map[string]any{"author": map[string]any{"display_name": a}}
	}
	return domain.Document{
		SourceID: id,
		Text:     title + " abstract text",
		Metadata: map[string]any{
			"display_name":     title,
			"publication_year": float64(year),
			"authorships":      ships,
			"citation":         title + ". " + fmt.Sprint(year) + ".",
		},
	}
}
