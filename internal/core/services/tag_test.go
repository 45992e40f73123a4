package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/adapters/driven/storage/memory"
	"github.com/litdb/litdb/internal/core/domain"
)

func newTestTagService(t *testing.T) (*TagService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		_, err := env.ingest.AddSource(ctx, id, "graph notes "+id, nil)
		require.NoError(t, err)
	}
	return NewTagService(memory.NewTagStore(env.docs)), env
}

func TestTagService_AddAndList(t *testing.T) {
	s, _ := newTestTagService(t)
	ctx := context.Background()

	require.NoError(t, s.AddTags(ctx, []string{"a", "b"}, []string{" reading ", "graphs"}))
	require.NoError(t, s.AddTags(ctx, []string{"a"}, []string{"reading"}))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{Name: "graphs", Count: 2}, {Name: "reading", Count: 2}}, tags)

	docs, err := s.Tagged(ctx, " reading")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].SourceID)
}

func TestTagService_AddTags_Errors(t *testing.T) {
	s, _ := newTestTagService(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.AddTags(ctx, []string{"a"}, []string{" ", ""}), domain.ErrInvalidInput)

	err := s.AddTags(ctx, []string{"missing"}, []string{"x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "tagging missing")
}

func TestTagService_RemoveAndDelete(t *testing.T) {
	s, _ := newTestTagService(t)
	ctx := context.Background()
	require.NoError(t, s.AddTags(ctx, []string{"a", "b"}, []string{"reading", "graphs"}))

	require.NoError(t, s.RemoveTags(ctx, []string{"b"}, []string{"reading"}))
	docs, err := s.Tagged(ctx, "reading")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].SourceID)

	require.NoError(t, s.DeleteTags(ctx, []string{"graphs"}))
	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Tag{{Name: "reading", Count: 1}}, tags)

	assert.ErrorIs(t, s.DeleteTags(ctx, []string{"graphs"}), domain.ErrNotFound)
}
