package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/adapters/driven/storage/memory"
	"github.com/litdb/litdb/internal/connectors/filesystem"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/services"
	"github.com/litdb/litdb/internal/normalisers"
	"github.com/litdb/litdb/internal/postprocessors"
)

// keywordEmbeddings embeds text as counts of a few keywords.
type keywordEmbeddings struct{}

var keywords = []string{"graph", "neural", "climate"}

func (keywordEmbeddings) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := keywordEmbeddings{}.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (keywordEmbeddings) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		lower := strings.ToLower(t)
		v := make([]float32, len(keywords)+1)
		for j, k := range keywords {
			v[j] = float32(strings.Count(lower, k))
		}
		v[len(keywords)] = 0.1
		out[i] = v
	}
	return out, nil
}

func (keywordEmbeddings) Dimensions() int            { return len(keywords) + 1 }
func (keywordEmbeddings) ModelName() string          { return "keywords" }
func (keywordEmbeddings) Ping(context.Context) error { return nil }
func (keywordEmbeddings) Close() error               { return nil }

// setupTestServices wires real services over in-memory stores and seeds
// three documents. The returned func restores the package state.
func setupTestServices(t *testing.T) func() {
	t.Helper()
	resetFlags()

	docs := memory.NewDocumentStore()
	vectors := docs.VectorIndex()
	embedder := services.NewEmbedder(postprocessors.DefaultPipeline(domain.EmbeddingSettings{}), keywordEmbeddings{}, vectors)
	ingest := services.NewIngestService(docs, embedder, nil)
	search := services.NewSearchService(docs, docs, vectors, embedder, nil)
	search.SetIngestService(ingest)

	setServices(&Services{
		Ingest:    ingest,
		Search:    search,
		Filter:    &mockFilterService{},
		Tag:       services.NewTagService(memory.NewTagStore(docs)),
		Directory: services.NewDirectoryService(memory.NewDirectoryStore(), docs, ingest, normalisers.DefaultRegistry(), filesystem.Builder()),
		Import:    services.NewImportService(docs, ingest, normalisers.DefaultRegistry(), filesystem.Builder(), nil),
		Settings:  services.NewSettingsService(memory.NewConfigStore()),
		Root:      "/tmp/litdb-test",
	})

	ctx := context.Background()
	seed := []struct{ id, title, text string }{
		{"a", "Graph networks", "graph neural"},
		{"b", "Warming", "climate climate"},
		{"c", "Graph theory", "graph theory"},
	}
	for _, s := range seed {
		_, err := ingest.AddSource(ctx, s.id, s.text, map[string]any{
			"display_name": s.title,
			"citation":     s.title + ". 2021.",
		})
		require.NoError(t, err)
	}

	return func() {
		setServices(&Services{})
		resetFlags()
	}
}

// resetFlags restores flag variables shared across Execute calls.
func resetFlags() {
	searchLimit = 3
	searchJSON = false
	searchRerank = false
	searchIterate = false
	searchMaxSteps = 0
	hybridText = ""
	addReferences, addCiting, addRelated, addAll, addBypass, addAuthor = false, false, false, false, false, false
	addMaxReferences, addMaxCiting, addMaxRelated = 0, 0, 0
	addTagList = ""
	filterDescription = ""
	tagList = ""
	sourceMetadata = false
	rootDir = ""
	verbose = false
	mcpPort, mcpHost = 0, "localhost"
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

// mockFilterService records calls to driving.FilterService.
type mockFilterService struct {
	filters []domain.Filter
	added   []domain.Document
	err     error
	calls   []string
}

func (m *mockFilterService) record(call string) { m.calls = append(m.calls, call) }

func (m *mockFilterService) UpdateFilter(_ context.Context, expr, lastUpdated string) ([]domain.Document, error) {
	m.record("update " + expr + " " + lastUpdated)
	return m.added, m.err
}

func (m *mockFilterService) UpdateFilters(_ context.Context) ([]domain.Document, error) {
	m.record("update-all")
	return m.added, m.err
}

func (m *mockFilterService) AddFilter(_ context.Context, expr, description string) error {
	m.record("add " + expr + " " + description)
	return m.err
}

func (m *mockFilterService) RemoveFilter(_ context.Context, expr string) error {
	m.record("rm " + expr)
	return m.err
}

func (m *mockFilterService) ListFilters(_ context.Context) ([]domain.Filter, error) {
	return m.filters, m.err
}

func (m *mockFilterService) Watch(_ context.Context, expr, description string) error {
	m.record("watch " + expr + " " + description)
	return m.err
}

func (m *mockFilterService) Follow(_ context.Context, orcid string) error {
	m.record("follow " + orcid)
	return m.err
}

func (m *mockFilterService) WatchCiting(_ context.Context, id string) error {
	m.record("citing " + id)
	return m.err
}

func (m *mockFilterService) WatchRelated(_ context.Context, id string) error {
	m.record("related " + id)
	return m.err
}
