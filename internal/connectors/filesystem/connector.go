// Package filesystem reads supported files from a local directory tree.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// DefaultExtensions are the file extensions indexed when none are given.
var DefaultExtensions = []string{
	".txt", ".org", ".md", ".tex", ".rst", ".html", ".htm", ".docx", ".bib",
}

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("connector closed")

// Connector walks a directory and watches it for changes.
type Connector struct {
	rootPath   string
	extensions map[string]bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector for rootPath that accepts the given extensions.
// With no extensions, DefaultExtensions are used.
func New(rootPath string, extensions ...string) *Connector {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Connector{rootPath: rootPath, extensions: exts}
}

// Builder returns a driven.ConnectorBuilder using the given extensions.
func Builder(extensions ...string) driven.ConnectorBuilder {
	return func(root string) driven.Connector {
		return New(root, extensions...)
	}
}

// Root returns the directory this connector reads.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks the root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", c.rootPath, domain.ErrInvalidInput)
	}
	return nil
}

// FullSync walks the tree and emits every accepted, non-hidden file.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !c.accepts(path) {
				return nil
			}

			doc, err := c.readFile(path)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				return nil
			}
			select {
			case docs <- *doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			errs <- err
		}
	}()

	return docs, errs
}

// Watch emits changes to accepted files until ctx is cancelled.
// New subdirectories are added to the watch as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.mu.Unlock()

	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}

	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	changes := make(chan domain.RawDocumentChange)
	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !c.hidden(event.Name) {
						if err := c.addTree(watcher, event.Name); err != nil {
							logger.Warn("Could not watch %s: %v", event.Name, err)
						}
						continue
					}
				}
				change := c.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watch error: %v", err)
			}
		}
	}()

	return changes, nil
}

// ReadFile reads path, which need not lie below the root, ignoring the
// extension filter.
func (c *Connector) ReadFile(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	doc, err := c.readFile(path)
	if err != nil {
		return nil, err
	}
	if doc.MIMEType == "application/octet-stream" {
		doc.MIMEType = "text/plain"
	}
	return doc, nil
}

// Close stops any running watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent converts a watcher event into a change, or nil when the
// event should be ignored.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if c.hidden(event.Name) || !c.accepts(event.Name) {
		return nil
	}

	var changeType domain.ChangeType
	switch {
	case event.Has(fsnotify.Create):
		changeType = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		changeType = domain.ChangeUpdated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{URI: event.Name, MIMEType: detectMIMEType(event.Name)},
		}
	default:
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}
	doc, err := c.readFile(event.Name)
	if err != nil {
		logger.Warn("Could not read %s: %v", event.Name, err)
		return nil
	}
	return &domain.RawDocumentChange{Type: changeType, Document: *doc}
}

// hidden applies isHidden to the part of path below the root.
func (c *Connector) hidden(path string) bool {
	if rel, err := filepath.Rel(c.rootPath, path); err == nil {
		return isHidden(rel)
	}
	return isHidden(path)
}

func (c *Connector) accepts(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

func (c *Connector) readFile(path string) (*domain.RawDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(abs)
	return &domain.RawDocument{
		URI:      abs,
		MIMEType: detectMIMEType(abs),
		Content:  content,
		Metadata: map[string]any{
			"filename":  name,
			"extension": strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
			"size":      info.Size(),
			"modified":  info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		},
	}, nil
}

// mimeFallbacks covers extensions the platform mime table may not know.
var mimeFallbacks = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".org":      "text/x-org",
	".tex":      "text/x-tex",
	".rst":      "text/x-rst",
	".bib":      "text/x-bibtex",
	".txt":      "text/plain",
	".html":     "text/html",
	".htm":      "text/html",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
}

// detectMIMEType maps a file name to a MIME type without parameters.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "text/plain"
	}
	if m, ok := mimeFallbacks[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		if i := strings.Index(m, ";"); i >= 0 {
			m = m[:i]
		}
		return strings.TrimSpace(m)
	}
	return "application/octet-stream"
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
