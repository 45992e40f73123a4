package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure ImportService implements the interface.
var _ driving.ImportService = (*ImportService)(nil)

// ImportService adds files and web pages one at a time.
type ImportService struct {
	writer  *sourceWriter
	connect driven.ConnectorBuilder
	fetch   driven.PageFetcher
}

// NewImportService creates an import service. fetch may be nil, in which
// case AddURL fails.
func NewImportService(
	docs driven.DocumentStore,
	ingest driving.IngestService,
	registry driven.NormaliserRegistry,
	connect driven.ConnectorBuilder,
	fetch driven.PageFetcher,
) *ImportService {
	return &ImportService{
		writer:  &sourceWriter{docs: docs, ingest: ingest, registry: registry},
		connect: connect,
		fetch:   fetch,
	}
}

// AddFile reads, normalises and stores one file.
func (s *ImportService) AddFile(ctx context.Context, path string) (string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolving %s: %w", path, err)
	}

	conn := s.connect(filepath.Dir(abs))
	defer conn.Close()

	raw, err := conn.ReadFile(ctx, abs)
	if err != nil {
		return abs, false, err
	}
	added, err := s.writer.add(ctx, raw)
	return abs, added, err
}

// AddURL stores a web page. A stored page is not downloaded again.
func (s *ImportService) AddURL(ctx context.Context, url string) (bool, error) {
	if s.fetch == nil {
		return false, fmt.Errorf("no page fetcher: %w", domain.ErrInvalidInput)
	}
	exists, err := s.writer.docs.Exists(ctx, url)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", url, err)
	}
	if exists {
		logger.Debug("%s already in store", url)
		return false, nil
	}

	raw, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		return false, err
	}
	return s.writer.add(ctx, raw)
}

// sourceWriter normalises raw documents and stores them through ingestion.
type sourceWriter struct {
	docs     driven.DocumentStore
	ingest   driving.IngestService
	registry driven.NormaliserRegistry
}

// add stores raw unless its URI is already stored. Bibliographies have
// their DOIs resolved as works once the file itself is added.
func (w *sourceWriter) add(ctx context.Context, raw *domain.RawDocument) (bool, error) {
	exists, err := w.docs.Exists(ctx, raw.URI)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", raw.URI, err)
	}
	if exists {
		return false, nil
	}

	result, err := w.registry.Normalise(ctx, raw)
	if err != nil {
		return false, fmt.Errorf("normalise: %w", err)
	}
	if strings.TrimSpace(result.Document.Text) == "" {
		return false, fmt.Errorf("no text in %s: %w", raw.URI, domain.ErrInvalidInput)
	}

	doc := result.Document
	added, err := w.ingest.AddSource(ctx, doc.SourceID, doc.Text, doc.Metadata)
	if err != nil || !added {
		return added, err
	}

	if dois, ok := doc.Metadata["dois"].([]string); ok && len(dois) > 0 {
		logger.Info("Resolving %d DOIs from %s", len(dois), doc.SourceID)
		if _, err := w.ingest.AddWorks(ctx, dois, driving.WorkOptions{}); err != nil {
			if fatal(err) {
				return true, err
			}
			logger.Warn("Resolving works from %s: %v", doc.SourceID, err)
		}
	}
	return true, nil
}
