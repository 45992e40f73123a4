package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
)

// pagedServer serves k pages of two results each. Cursor "*" is page 1,
// "c<i>" is page i+1; the last page has a null next_cursor.
type pagedServer struct {
	mu      sync.Mutex
	k       int
	failAt  int
	cursors []string
	queries []map[string][]string
}

func (p *pagedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursor := r.URL.Query().Get("cursor")
	p.cursors = append(p.cursors, cursor)
	p.queries = append(p.queries, r.URL.Query())

	page := 1
	if cursor != StartCursor {
		_, _ = fmt.Sscanf(cursor, "c%d", &page)
		page++
	}
	if page == p.failAt {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	next := "null"
	if page < p.k {
		next = fmt.Sprintf("%q", fmt.Sprintf("c%d", page))
	}
	fmt.Fprintf(w, `{"meta":{"count":%d,"next_cursor":%s},"results":[{"id":"W%d-1"},{"id":"W%d-2"}]}`,
		p.k*2, next, page, page)
}

func TestClient_Paginate_FollowsCursor(t *testing.T) {
	ps := &pagedServer{k: 3}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	c := newTestClient(srv)
	var ids []string
	var counts []int
	err := c.Paginate(context.Background(), srv.URL+"/works", nil, func(env Envelope) bool {
		counts = append(counts, env.Meta.Count)
		for _, r := range env.Results {
			var w struct{ ID string }
			require.NoError(t, json.Unmarshal(r, &w))
			ids = append(ids, w.ID)
		}
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"*", "c1", "c2"}, ps.cursors, "exactly k requests")
	assert.Len(t, ids, 6)
	assert.Equal(t, "W3-2", ids[5])
	assert.Equal(t, []int{6, 6, 6}, counts)
	assert.Equal(t, []string{"200"}, ps.queries[0]["per-page"])
}

func TestClient_Paginate_SinglePage(t *testing.T) {
	ps := &pagedServer{k: 1}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	calls := 0
	err := newTestClient(srv).Paginate(context.Background(), srv.URL+"/works", nil, func(Envelope) bool {
		calls++
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, ps.cursors, 1)
}

func TestClient_Paginate_StopsWhenCallbackDeclines(t *testing.T) {
	ps := &pagedServer{k: 5}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	err := newTestClient(srv).Paginate(context.Background(), srv.URL+"/works", nil, func(Envelope) bool {
		return false
	})

	require.NoError(t, err)
	assert.Len(t, ps.cursors, 1)
}

func TestClient_Paginate_DegradedPage(t *testing.T) {
	ps := &pagedServer{k: 3, failAt: 2}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	pages := 0
	err := newTestClient(srv).Paginate(context.Background(), srv.URL+"/works", nil, func(Envelope) bool {
		pages++
		return true
	})

	assert.ErrorIs(t, err, domain.ErrIncompleteSweep)
	assert.Equal(t, 1, pages)
}

func TestClient_Paginate_KeepsURLQuery(t *testing.T) {
	ps := &pagedServer{k: 1}
	srv := httptest.NewServer(ps)
	defer srv.Close()

	err := newTestClient(srv).Paginate(context.Background(), srv.URL+"/works?filter=author.id:A1", nil, func(Envelope) bool {
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"author.id:A1"}, ps.queries[0]["filter"])
}

func TestMeta_Next(t *testing.T) {
	c := "abc"
	assert.Equal(t, "abc", Meta{NextCursor: &c}.Next())
	assert.Equal(t, "", Meta{}.Next())
}
