package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/litdb/litdb/internal/adapters/driven/storage/memory"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/postprocessors"
)

// vocabulary drives keywordEmbeddings: one dimension per term plus a
// small constant so no text embeds to the zero vector.
var vocabulary = []string{"graph", "neural", "protein", "climate"}

// keywordEmbeddings embeds text as keyword counts.
type keywordEmbeddings struct {
	mu      sync.Mutex
	model   string
	batches int
	texts   int
	err     error
}

func (k *keywordEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := k.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (k *keywordEmbeddings) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.err != nil {
		return nil, k.err
	}
	k.batches++
	k.texts += len(texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = keywordVector(t)
	}
	return out, nil
}

func (k *keywordEmbeddings) Dimensions() int { return len(vocabulary) + 1 }

func (k *keywordEmbeddings) ModelName() string {
	if k.model == "" {
		return "keywords"
	}
	return k.model
}

func (k *keywordEmbeddings) Ping(context.Context) error { return nil }
func (k *keywordEmbeddings) Close() error               { return nil }

func (k *keywordEmbeddings) calls() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.batches
}

func keywordVector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(vocabulary)+1)
	for i, term := range vocabulary {
		v[i] = float32(strings.Count(lower, term))
	}
	v[len(vocabulary)] = 0.1
	return v
}

// fakeClient is an in-memory OpenAlex.
type fakeClient struct {
	mu          sync.Mutex
	works       map[string]json.RawMessage
	listings    map[string][]json.RawMessage
	authors     map[string]*domain.Author
	sweepErr    error
	pageSize    int
	workCalls   int
	lastFilters []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		works:    make(map[string]json.RawMessage),
		listings: make(map[string][]json.RawMessage),
		authors:  make(map[string]*domain.Author),
		pageSize: 2,
	}
}

// addWork registers a work under its OpenAlex id and DOI.
func (c *fakeClient) addWork(raw json.RawMessage) {
	var ref struct {
		ID  string `json:"id"`
		DOI string `json:"doi"`
	}
	_ = json.Unmarshal(raw, &ref)
	c.works[ref.ID] = raw
	c.works[domain.ShortID(ref.ID)] = raw
	if ref.DOI != "" {
		c.works[domain.NormaliseWorkID(ref.DOI)] = raw
	}
}

func (c *fakeClient) Work(_ context.Context, id string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workCalls++
	if raw, ok := c.works[domain.NormaliseWorkID(id)]; ok {
		return raw, nil
	}
	if raw, ok := c.works[id]; ok {
		return raw, nil
	}
	return nil, fmt.Errorf("%s: %w", id, domain.ErrResolveFailed)
}

func (c *fakeClient) Author(_ context.Context, id string) (*domain.Author, error) {
	if a, ok := c.authors[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("author %s: %w", id, domain.ErrResolveFailed)
}

// Works matches a listing by the filter with any from_created_date clause
// removed.
func (c *fakeClient) Works(ctx context.Context, filter string, fn func(driven.Page) bool) error {
	c.mu.Lock()
	c.lastFilters = append(c.lastFilters, filter)
	c.mu.Unlock()
	key := filter
	if i := strings.Index(key, ",from_created_date:"); i >= 0 {
		key = key[:i]
	}
	return c.page(ctx, c.listings[key], fn)
}

func (c *fakeClient) WorksAt(ctx context.Context, url string, fn func(driven.Page) bool) error {
	return c.page(ctx, c.listings[url], fn)
}

func (c *fakeClient) page(_ context.Context, results []json.RawMessage, fn func(driven.Page) bool) error {
	for start := 0; start < len(results); start += c.pageSize {
		end := min(start+c.pageSize, len(results))
		if !fn(driven.Page{Count: len(results), Results: results[start:end]}) {
			return nil
		}
	}
	if len(results) == 0 {
		fn(driven.Page{})
	}
	return c.sweepErr
}

func (c *fakeClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workCalls
}

// testWork is a compact OpenAlex work fixture.
type testWork struct {
	ID         string
	DOI        string
	Title      string
	Abstract   string
	References []string
	Related    []string
}

func (w testWork) raw() json.RawMessage {
	index := map[string][]int{}
	for i, word := range strings.Fields(w.Abstract) {
		index[word] = append(index[word], i)
	}
	obj := map[string]any{
		"id":                      "https://openalex.org/" + w.ID,
		"display_name":            w.Title,
		"title":                   w.Title,
		"publication_year":        2021,
		"referenced_works":        prefixed(w.References),
		"related_works":           prefixed(w.Related),
		"abstract_inverted_index": index,
		"authorships": []any{
			map[string]any{"author": map[string]any{"display_name": "Ada Lovelace"}},
		},
	}
	if w.DOI != "" {
		obj["doi"] = "https://doi.org/" + w.DOI
	}
	b, _ := json.Marshal(obj)
	return b
}

func prefixed(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "https://openalex.org/" + id
	}
	return out
}

// mockConfirm is a testify mock of driven.ConfirmPolicy.
type mockConfirm struct {
	mock.Mock
}

func (m *mockConfirm) Confirm(_ context.Context, req domain.ConfirmRequest) domain.Decision {
	args := m.Called(req)
	return args.Get(0).(domain.Decision)
}

// testEnv wires the services over in-memory stores.
type testEnv struct {
	docs     *memory.DocumentStore
	vectors  *memory.VectorIndex
	embed    *keywordEmbeddings
	embedder *Embedder
	client   *fakeClient
	ingest   *IngestService
	search   *SearchService
}

func newTestEnv(t *testing.T, opts ...IngestOption) *testEnv {
	t.Helper()
	docs := memory.NewDocumentStore()
	vectors := docs.VectorIndex()
	embed := &keywordEmbeddings{}
	embedder := NewEmbedder(postprocessors.DefaultPipeline(domain.EmbeddingSettings{}), embed, vectors)
	client := newFakeClient()
	ingest := NewIngestService(docs, embedder, client, opts...)
	search := NewSearchService(docs, docs, vectors, embedder, nil)
	search.SetIngestService(ingest)
	return &testEnv{
		docs:     docs,
		vectors:  vectors,
		embed:    embed,
		embedder: embedder,
		client:   client,
		ingest:   ingest,
		search:   search,
	}
}

// fixedClock returns a clock stuck at the given date.
func fixedClock(date string) func() time.Time {
	ts, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}
