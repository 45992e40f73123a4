package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/adapters/driven/storage/memory"
	"github.com/litdb/litdb/internal/core/domain"
)

func newTestFilterService(t *testing.T) (*FilterService, *memory.FilterStore, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	filters := memory.NewFilterStore()
	s := NewFilterService(filters, env.ingest, env.client)
	s.now = fixedClock("2024-06-01")
	return s, filters, env
}

func TestFilter_UpdateFilter_FirstRunLooksBackAYear(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	env.client.listings["concepts.id:C1"] = []json.RawMessage{
		testWork{ID: "W10", Title: "Graph one"}.raw(),
		testWork{ID: "W11", Title: "Graph two"}.raw(),
		testWork{ID: "W12", Title: "Graph three"}.raw(),
	}
	require.NoError(t, s.AddFilter(ctx, "concepts.id:C1", "graphs"))

	added, err := s.UpdateFilter(ctx, "concepts.id:C1", "")
	require.NoError(t, err)
	assert.Len(t, added, 3)
	assert.Equal(t, "concepts.id:C1,from_created_date:2023-06-02", env.client.lastFilters[0])

	f, err := filters.GetFilter(ctx, "concepts.id:C1")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", f.LastUpdated)
	assert.Equal(t, "graphs", f.Description)

	// Replaying adds nothing new.
	added, err = s.UpdateFilter(ctx, f.Expr, f.LastUpdated)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, "concepts.id:C1,from_created_date:2024-06-01", env.client.lastFilters[1])
}

func TestFilter_UpdateFilter_IncompleteSweepKeepsWatermark(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	env.client.listings["concepts.id:C1"] = []json.RawMessage{testWork{ID: "W10", Title: "Graph"}.raw()}
	env.client.sweepErr = domain.ErrIncompleteSweep
	require.NoError(t, filters.SaveFilter(ctx, domain.Filter{Expr: "concepts.id:C1", LastUpdated: "2024-01-01"}))

	added, err := s.UpdateFilter(ctx, "concepts.id:C1", "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrIncompleteSweep)
	assert.Len(t, added, 1, "what was fetched is still stored")

	f, err := filters.GetFilter(ctx, "concepts.id:C1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", f.LastUpdated)
}

func TestFilter_UpdateFilter_FailedWriteKeepsWatermark(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	env.client.listings["concepts.id:C1"] = []json.RawMessage{
		json.RawMessage(`{"display_name": "no id"}`),
		testWork{ID: "W10", Title: "Graph"}.raw(),
	}
	require.NoError(t, filters.SaveFilter(ctx, domain.Filter{Expr: "concepts.id:C1"}))

	added, err := s.UpdateFilter(ctx, "concepts.id:C1", "")
	assert.ErrorIs(t, err, domain.ErrIncompleteSweep)
	assert.Len(t, added, 1)

	f, err := filters.GetFilter(ctx, "concepts.id:C1")
	require.NoError(t, err)
	assert.Empty(t, f.LastUpdated)
}

func TestFilter_UpdateFilters(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	env.client.listings["a"] = []json.RawMessage{testWork{ID: "W20", Title: "A"}.raw()}
	env.client.listings["b"] = []json.RawMessage{testWork{ID: "W21", Title: "B"}.raw()}
	require.NoError(t, s.AddFilter(ctx, "a", ""))
	require.NoError(t, s.AddFilter(ctx, "b", ""))

	added, err := s.UpdateFilters(ctx)
	require.NoError(t, err)
	assert.Len(t, added, 2)

	list, err := filters.ListFilters(ctx)
	require.NoError(t, err)
	for _, f := range list {
		assert.Equal(t, "2024-06-01", f.LastUpdated)
	}
}

func TestFilter_AddFilterKeepsWatermark(t *testing.T) {
	s, filters, _ := newTestFilterService(t)
	ctx := context.Background()
	require.NoError(t, filters.SaveFilter(ctx, domain.Filter{Expr: "x", Description: "old", LastUpdated: "2024-02-02"}))

	require.NoError(t, s.AddFilter(ctx, "x", ""))
	f, err := filters.GetFilter(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "old", f.Description)
	assert.Equal(t, "2024-02-02", f.LastUpdated)

	require.NoError(t, s.AddFilter(ctx, "x", "new"))
	f, err = filters.GetFilter(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "new", f.Description)
	assert.Equal(t, "2024-02-02", f.LastUpdated)

	require.NoError(t, s.RemoveFilter(ctx, "x"))
	assert.ErrorIs(t, s.RemoveFilter(ctx, "x"), domain.ErrNotFound)
}

func TestFilter_Watch(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	env.client.listings["concepts.id:C1"] = []json.RawMessage{testWork{ID: "W10"}.raw()}

	require.NoError(t, s.Watch(ctx, "concepts.id:C1", "graphs"))
	f, err := filters.GetFilter(ctx, "concepts.id:C1")
	require.NoError(t, err)
	assert.Equal(t, "graphs", f.Description)
	assert.Empty(t, f.LastUpdated)

	err = s.Watch(ctx, "nonsense:1", "")
	assert.ErrorIs(t, err, domain.ErrNoResults)
	_, err = filters.GetFilter(ctx, "nonsense:1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFilter_Follow(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	seedGraph(env.client)
	worksURL := "https://api.openalex.org/works?filter=author.id:A1"
	env.client.authors["https://orcid.org/0000-0002"] = &domain.Author{DisplayName: "Grace Hopper", WorksAPIURL: worksURL}
	env.client.listings[worksURL] = []json.RawMessage{testWork{ID: "W2"}.raw()}

	require.NoError(t, s.Follow(ctx, "0000-0002"))

	f, err := filters.GetFilter(ctx, "author.orcid:https://orcid.org/0000-0002")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", f.Description)
	assert.Equal(t, "2024-06-01", f.LastUpdated)
	assert.Equal(t, 1, count(t, env))

	assert.ErrorIs(t, s.Follow(ctx, " "), domain.ErrInvalidInput)
}

func TestFilter_WatchCitingAndRelated(t *testing.T) {
	s, filters, env := newTestFilterService(t)
	ctx := context.Background()
	seedGraph(env.client)

	require.NoError(t, s.WatchCiting(ctx, "10.1/A"))
	require.NoError(t, s.WatchRelated(ctx, "10.1/A"))

	list, err := filters.ListFilters(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.Filter{Expr: "cites:W1", Description: "Citing papers for 10.1/A"}, list[0])
	assert.Equal(t, domain.Filter{Expr: "related_to:W1", Description: "Related papers for 10.1/A"}, list[1])

	assert.ErrorIs(t, s.WatchCiting(ctx, "W404"), domain.ErrResolveFailed)
}
