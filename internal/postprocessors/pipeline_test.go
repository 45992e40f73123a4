package postprocessors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
)

// mockProcessor returns fixed chunks, or passes its input through.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_Process_NoChunks(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), &domain.Document{SourceID: "s"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipeline_Process_ChainsInOrder(t *testing.T) {
	var seen []string
	record := func(name string) *recordingProcessor {
		return &recordingProcessor{name: name, seen: &seen}
	}
	chunks, err := NewPipeline(
		&mockProcessor{name: "create", chunks: []domain.Chunk{{ID: "1"}}},
		record("a"),
		record("b"),
	).Process(context.Background(), &domain.Document{SourceID: "s"})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, []string{"a:1", "b:1"}, seen)
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	first := &mockProcessor{name: "first", chunks: []domain.Chunk{{ID: "1", Content: "a"}}}
	passthrough := &mockProcessor{name: "passthrough"}

	chunks, err := NewPipeline(first, passthrough).Process(context.Background(), &domain.Document{SourceID: "s"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a", chunks[0].Content)
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	failing := &mockProcessor{name: "broken", err: errors.New("boom")}

	_, err := NewPipeline(failing).Process(context.Background(), &domain.Document{SourceID: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor broken")
}

func TestDefaultPipeline(t *testing.T) {
	p := DefaultPipeline(domain.EmbeddingSettings{ChunkSize: 4, ChunkOverlap: 2})
	require.Len(t, p, 1)
	assert.Equal(t, "chunker", p[0].Name())

	chunks, err := p.Process(context.Background(), &domain.Document{SourceID: "s", Text: "abcdefgh"})
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestDefaultPipeline_ZeroSettings(t *testing.T) {
	p := DefaultPipeline(domain.EmbeddingSettings{})

	chunks, err := p.Process(context.Background(), &domain.Document{SourceID: "s", Text: "short"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Content)
}

type recordingProcessor struct {
	name string
	seen *[]string
}

func (r *recordingProcessor) Name() string { return r.name }

func (r *recordingProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	*r.seen = append(*r.seen, fmt.Sprintf("%s:%d", r.name, len(chunks)))
	return chunks, nil
}
