// Command litdb is a personal literature database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/litdb/litdb/internal/adapters/driven/config/file"
	"github.com/litdb/litdb/internal/adapters/driven/embedding"
	"github.com/litdb/litdb/internal/adapters/driven/rerank/tei"
	"github.com/litdb/litdb/internal/adapters/driven/storage/sqlite"
	"github.com/litdb/litdb/internal/adapters/driving/cli"
	"github.com/litdb/litdb/internal/connectors/filesystem"
	"github.com/litdb/litdb/internal/connectors/openalex"
	"github.com/litdb/litdb/internal/connectors/web"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/services"
	"github.com/litdb/litdb/internal/logger"
	"github.com/litdb/litdb/internal/normalisers"
	"github.com/litdb/litdb/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version, open)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// open wires the services for the database in root.
func open(root string, confirm driven.ConfirmPolicy) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	store, err := sqlite.NewStore(root)
	if err != nil {
		return nil, err
	}

	// Without an embedding service the database still opens; adding and
	// vector search then fail with ErrEmbeddingUnavailable.
	embeddingService, err := embedding.New(settings.Embedding)
	if err != nil {
		logger.Debug("Embedding service unavailable: %v", err)
		embeddingService = nil
	}

	var reranker driven.Reranker
	if settings.Rerank.IsConfigured() {
		r, err := tei.New(tei.Config{BaseURL: settings.Rerank.BaseURL, Model: settings.Rerank.Model})
		if err != nil {
			logger.Warn("Cross-encoder disabled: %v", err)
		} else {
			reranker = r
		}
	}

	client := openalex.NewClient(openalex.ConfigFromSettings(settings.OpenAlex))
	docs := store.DocumentStore()
	vectors := store.VectorIndex()
	embedder := services.NewEmbedder(postprocessors.DefaultPipeline(settings.Embedding), embeddingService, vectors)

	ingest := services.NewIngestService(docs, embedder, client,
		services.WithConfirmPolicy(confirm),
		services.WithCitationCountTrigger(settings.OpenAlex.CitationCountTrigger),
	)
	search := services.NewSearchService(docs, store.SearchEngine(), vectors, embedder, reranker)
	search.SetIngestService(ingest)
	search.SetConfirmPolicy(confirm)

	closeAll := func() error {
		if embeddingService != nil {
			if err := embeddingService.Close(); err != nil {
				logger.Warn("Closing embedding service: %v", err)
			}
		}
		return store.Close()
	}

	registry := normalisers.DefaultRegistry()
	return &cli.Services{
		Ingest:    ingest,
		Search:    search,
		Filter:    services.NewFilterService(store.FilterStore(), ingest, client),
		Tag:       services.NewTagService(store.TagStore()),
		Directory: services.NewDirectoryService(store.DirectoryStore(), docs, ingest, registry, filesystem.Builder()),
		Import:    services.NewImportService(docs, ingest, registry, filesystem.Builder(), web.New(web.Config{})),
		Settings:  settingsService,
		Root:      root,
		Close:     closeAll,
	}, nil
}
