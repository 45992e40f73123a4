package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/connectors/filesystem"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/normalisers"
)

// stubFetcher serves pages from a map.
type stubFetcher struct {
	pages map[string]string
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*domain.RawDocument, error) {
	f.calls++
	body, ok := f.pages[url]
	if !ok {
		return nil, domain.ErrResolveFailed
	}
	return &domain.RawDocument{URI: url, MIMEType: "text/html", Content: []byte(body)}, nil
}

func newTestImportService(t *testing.T, fetch driven.PageFetcher) (*ImportService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	s := NewImportService(env.docs, env.ingest, normalisers.DefaultRegistry(), filesystem.Builder(), fetch)
	return s, env
}

func TestImportService_AddFile(t *testing.T) {
	s, env := newTestImportService(t, nil)
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "reading.md")
	require.NoError(t, os.WriteFile(path, []byte("# Graph reading\n\nneural graph models"), 0o644))

	id, added, err := s.AddFile(ctx, path)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, path, id)

	doc, err := env.ingest.Get(ctx, path)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "neural graph models")

	_, added, err = s.AddFile(ctx, path)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, count(t, env))
}

func TestImportService_AddFile_NoExtensionIsText(t *testing.T) {
	s, env := newTestImportService(t, nil)
	path := filepath.Join(t.TempDir(), "NOTES")
	require.NoError(t, os.WriteFile(path, []byte("climate observations"), 0o644))

	_, added, err := s.AddFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, count(t, env))
}

func TestImportService_AddFile_Bibliography(t *testing.T) {
	s, env := newTestImportService(t, nil)
	env.client.addWork(testWork{ID: "W1", DOI: "10.1/graph", Title: "Graph networks", Abstract: "graph neural"}.raw())
	path := filepath.Join(t.TempDir(), "refs.bib")
	require.NoError(t, os.WriteFile(path, []byte("@article{g, title={Graph networks}, doi={10.1/GRAPH}}"), 0o644))

	_, added, err := s.AddFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, added)

	ok, err := env.docs.Exists(context.Background(), "https://doi.org/10.1/graph")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, count(t, env))
}

func TestImportService_AddFile_Errors(t *testing.T) {
	s, env := newTestImportService(t, nil)
	dir := t.TempDir()

	_, _, err := s.AddFile(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = s.AddFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  "), 0o644))
	_, _, err = s.AddFile(context.Background(), empty)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, count(t, env))
}

func TestImportService_AddURL(t *testing.T) {
	const url = "https://example.org/post"
	fetch := &stubFetcher{pages: map[string]string{
		url: "<html><head><title>Climate post</title></head><body><p>climate graph</p></body></html>",
	}}
	s, env := newTestImportService(t, fetch)
	ctx := context.Background()

	added, err := s.AddURL(ctx, url)
	require.NoError(t, err)
	assert.True(t, added)

	doc, err := env.ingest.Get(ctx, url)
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "climate graph")
	assert.Equal(t, "Climate post", doc.Title())

	added, err = s.AddURL(ctx, url)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, fetch.calls, "stored pages are not fetched again")

	_, err = s.AddURL(ctx, "https://example.org/missing")
	assert.ErrorIs(t, err, domain.ErrResolveFailed)
}

func TestImportService_AddURL_NoFetcher(t *testing.T) {
	s, _ := newTestImportService(t, nil)

	_, err := s.AddURL(context.Background(), "https://example.org")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
