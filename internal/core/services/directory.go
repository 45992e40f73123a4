package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure DirectoryService implements the interface.
var _ driving.DirectoryService = (*DirectoryService)(nil)

// DirectoryService indexes local directories into the store.
type DirectoryService struct {
	dirs    driven.DirectoryStore
	writer  *sourceWriter
	connect driven.ConnectorBuilder
	now     func() time.Time
}

// NewDirectoryService creates a directory service.
func NewDirectoryService(
	dirs driven.DirectoryStore,
	docs driven.DocumentStore,
	ingest driving.IngestService,
	registry driven.NormaliserRegistry,
	connect driven.ConnectorBuilder,
) *DirectoryService {
	return &DirectoryService{
		dirs:    dirs,
		writer:  &sourceWriter{docs: docs, ingest: ingest, registry: registry},
		connect: connect,
		now:     time.Now,
	}
}

// Index walks each directory, adds files not yet stored and records the
// directory with today's date.
func (s *DirectoryService) Index(ctx context.Context, dirs []string) (int, error) {
	total := 0
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return total, fmt.Errorf("resolving %s: %w", dir, err)
		}
		n, err := s.indexOne(ctx, abs)
		total += n
		if err != nil {
			return total, err
		}
		if err := s.dirs.SaveDirectory(ctx, domain.Directory{
			Path:        abs,
			LastUpdated: s.now().Format(domain.DateLayout),
		}); err != nil {
			return total, fmt.Errorf("saving directory %s: %w", abs, err)
		}
		logger.Info("Indexed %s: %d new files", abs, n)
	}
	return total, nil
}

// Reindex runs Index over every recorded directory.
func (s *DirectoryService) Reindex(ctx context.Context) (int, error) {
	dirs, err := s.dirs.ListDirectories(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing directories: %w", err)
	}
	paths := make([]string, len(dirs))
	for i, d := range dirs {
		paths[i] = d.Path
	}
	return s.Index(ctx, paths)
}

// ListDirectories returns the recorded directories.
func (s *DirectoryService) ListDirectories(ctx context.Context) ([]domain.Directory, error) {
	return s.dirs.ListDirectories(ctx)
}

// WatchDirectories adds files created or written in any recorded directory
// until ctx is cancelled. Deleted files stay in the store.
func (s *DirectoryService) WatchDirectories(ctx context.Context) error {
	dirs, err := s.dirs.ListDirectories(ctx)
	if err != nil {
		return fmt.Errorf("listing directories: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("no indexed directories: %w", domain.ErrNotFound)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, d := range dirs {
		conn := s.connect(d.Path)
		changes, err := conn.Watch(ctx)
		if err != nil {
			conn.Close()
			logger.Warn("Cannot watch %s: %v", d.Path, err)
			continue
		}
		logger.Info("Watching %s", d.Path)
		g.Go(func() error {
			defer conn.Close()
			return s.processChanges(ctx, changes)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (s *DirectoryService) processChanges(ctx context.Context, changes <-chan domain.RawDocumentChange) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Type == domain.ChangeDeleted {
				logger.Debug("Ignoring removal of %s", change.Document.URI)
				continue
			}
			added, err := s.writer.add(ctx, &change.Document)
			if err != nil {
				if fatal(err) {
					return err
				}
				logger.Debug("Skipping %s: %v", change.Document.URI, err)
				continue
			}
			if added {
				logger.Info("Added %s", change.Document.URI)
			}
		}
	}
}

// indexOne adds every new file under root.
func (s *DirectoryService) indexOne(ctx context.Context, root string) (int, error) {
	conn := s.connect(root)
	defer conn.Close()

	if err := conn.Validate(ctx); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", root, err)
	}

	logger.Section("Index " + root)
	docsCh, errsCh := conn.FullSync(ctx)
	count := 0
	for {
		select {
		case <-ctx.Done():
			return count, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				return count, fmt.Errorf("walking %s: %w", root, err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				// Drain any error sent after the last document.
				if errsCh != nil {
					if err := <-errsCh; err != nil {
						return count, fmt.Errorf("walking %s: %w", root, err)
					}
				}
				return count, nil
			}
			added, err := s.writer.add(ctx, &raw)
			if err != nil {
				if fatal(err) {
					return count, err
				}
				logger.Debug("Skipping %s: %v", raw.URI, err)
				continue
			}
			if added {
				count++
				logger.Debug("Added %s", raw.URI)
			}
		}
	}
}

// fatal reports errors that stop indexing rather than skip one file.
func fatal(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, domain.ErrEmbeddingMismatch) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
