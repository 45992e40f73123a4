package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		assert.Equal(t, DefaultChunkSize, p.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, p.overlap)
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		assert.Equal(t, 500, p.chunkSize)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		assert.Equal(t, 25, p.overlap)
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		assert.Equal(t, DefaultChunkSize, p.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, p.overlap)
	})
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}

func TestProcessor_Split(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		overlap  int
		text     string
		expected []string
	}{
		{name: "empty text is one empty chunk", size: 4, overlap: 1, text: "", expected: []string{""}},
		{name: "shorter than size", size: 10, overlap: 2, text: "abc", expected: []string{"abc"}},
		{name: "exact size", size: 3, overlap: 1, text: "abc", expected: []string{"abc"}},
		{name: "overlapping windows", size: 4, overlap: 2, text: "abcdefgh", expected: []string{"abcd", "cdef", "efgh"}},
		{name: "tail window", size: 4, overlap: 1, text: "abcdefghij", expected: []string{"abcd", "defg", "ghij"}},
		{name: "no overlap", size: 3, overlap: 0, text: "abcdefg", expected: []string{"abc", "def", "g"}},
		{name: "multibyte runes", size: 2, overlap: 0, text: "αβγδ", expected: []string{"αβ", "γδ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(WithChunkSize(tt.size), WithOverlap(tt.overlap))
			assert.Equal(t, tt.expected, p.Split(tt.text))
		})
	}
}

func TestProcessor_Split_Deterministic(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)

	assert.Equal(t, p.Split(text), p.Split(text))
}

func TestProcessor_Split_CoversText(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	text := strings.Repeat("x", 1050)

	windows := p.Split(text)
	require.NotEmpty(t, windows)
	for _, w := range windows[:len(windows)-1] {
		assert.Len(t, w, 100)
	}
	// 0, 80, ..., 960 -> 13 windows; the last covers 960..1050
	assert.Len(t, windows, 13)
	assert.Len(t, windows[12], 90)
}

func TestProcessor_Process(t *testing.T) {
	p := New(WithChunkSize(4), WithOverlap(2))
	doc := &domain.Document{SourceID: "https://doi.org/10.1/x", Text: "abcdefgh"}

	chunks, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, doc.SourceID, c.DocumentID)
		assert.NotEmpty(t, c.ID)
	}
	assert.Equal(t, "cdef", chunks[1].Content)

	again, err := p.Process(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, chunks[0].ID, again[0].ID, "chunk ids are deterministic")
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

func TestProcessor_Process_EmptyText(t *testing.T) {
	chunks, err := New().Process(context.Background(), &domain.Document{SourceID: "s"}, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Content)
}

func TestProcessor_Process_IgnoresInputChunks(t *testing.T) {
	input := []domain.Chunk{{ID: "old", Content: "old"}}
	chunks, err := New().Process(context.Background(), &domain.Document{SourceID: "s", Text: "new"}, input)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].Content)
}
