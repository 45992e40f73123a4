package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
)

func TestDocumentStore_AddDocument_Idempotent(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	added, err := store.AddDocument(ctx, &domain.Document{SourceID: "a", Text: "first"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.AddDocument(ctx, &domain.Document{SourceID: "a", Text: "second"})
	require.NoError(t, err)
	assert.False(t, added)

	doc, err := store.GetDocument(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "first", doc.Text)
}

func TestDocumentStore_Exists(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	_, err := store.AddDocument(ctx, &domain.Document{
		SourceID: "https://doi.org/10.1/x",
		Metadata: map[string]any{"id": "https://openalex.org/W1"},
	})
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "https://openalex.org/W1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "https://openalex.org/W2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentStore_DeleteAndList(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.AddDocument(ctx, &domain.Document{SourceID: id, Embedding: []float32{1}})
		require.NoError(t, err)
	}

	require.NoError(t, store.DeleteDocument(ctx, "b"))
	assert.ErrorIs(t, store.DeleteDocument(ctx, "b"), domain.ErrNotFound)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].SourceID)
	assert.Nil(t, docs[0].Embedding)
}

func TestDocumentStore_Search(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	_, _ = store.AddDocument(ctx, &domain.Document{SourceID: "a", Text: "graph graph"})
	_, _ = store.AddDocument(ctx, &domain.Document{SourceID: "b", Text: "graph"})
	_, _ = store.AddDocument(ctx, &domain.Document{SourceID: "c", Text: "protein"})

	hits, err := store.Search(ctx, "graph", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].SourceID)
	assert.Less(t, hits[0].BM25, hits[1].BM25)

	_, err = store.Search(ctx, " ", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_SearchAndDeclare(t *testing.T) {
	store := NewDocumentStore()
	idx := store.VectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.Declare(ctx, "m", 2))
	_, _ = store.AddDocument(ctx, &domain.Document{SourceID: "x", Embedding: []float32{1, 0}})
	_, _ = store.AddDocument(ctx, &domain.Document{SourceID: "y", Embedding: []float32{0, 1}})

	hits, err := idx.Search(ctx, []float32{0.1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "y", hits[0].SourceID)

	assert.ErrorIs(t, idx.Declare(ctx, "other", 2), domain.ErrEmbeddingMismatch)
	require.NoError(t, idx.Redeclare(ctx, "other", 3))
	model, dims := idx.Model()
	assert.Equal(t, "other", model)
	assert.Equal(t, 3, dims)
}

func TestTagStore(t *testing.T) {
	docs := NewDocumentStore()
	tags := NewTagStore(docs)
	ctx := context.Background()
	_, _ = docs.AddDocument(ctx, &domain.Document{SourceID: "a"})

	assert.ErrorIs(t, tags.AddTags(ctx, "missing", []string{"x"}), domain.ErrNotFound)
	require.NoError(t, tags.AddTags(ctx, "a", []string{"ml", "nlp"}))

	list, err := tags.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{Name: "ml", Count: 1}, {Name: "nlp", Count: 1}}, list)

	tagged, err := tags.Tagged(ctx, "ml")
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	require.NoError(t, tags.DeleteTag(ctx, "ml"))
	got, err := tags.TagsFor(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"nlp"}, got)
}

func TestFilterStore(t *testing.T) {
	store := NewFilterStore()
	ctx := context.Background()

	require.NoError(t, store.SaveFilter(ctx, domain.Filter{Expr: "cites:W1"}))
	require.NoError(t, store.SetLastUpdated(ctx, "cites:W1", "2024-01-01"))
	f, err := store.GetFilter(ctx, "cites:W1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", f.LastUpdated)

	assert.ErrorIs(t, store.SetLastUpdated(ctx, "nope", "2024-01-01"), domain.ErrNotFound)
	require.NoError(t, store.DeleteFilter(ctx, "cites:W1"))
	assert.ErrorIs(t, store.DeleteFilter(ctx, "cites:W1"), domain.ErrNotFound)
}
