// Package web fetches single web pages for storage as sources.
package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.PageFetcher = (*Fetcher)(nil)

const (
	// DefaultTimeout bounds one page download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes is the largest page accepted.
	DefaultMaxBytes = 10 << 20

	// DefaultUserAgent identifies litdb to web servers.
	DefaultUserAgent = "litdb (+https://github.com/litdb/litdb)"
)

// Config holds fetcher configuration. Zero fields take defaults.
type Config struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// Fetcher downloads pages over HTTP.
type Fetcher struct {
	cfg  Config
	http *http.Client
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{cfg: cfg, http: client}
}

// Fetch downloads rawURL. A missing Content-Type is taken as HTML.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("not a web address %q: %w", rawURL, domain.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	logger.Debug("Fetching %s", rawURL)
	resp, err := f.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("fetching %s: %v: %w", rawURL, err, domain.ErrResolveFailed)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: status %d: %w", rawURL, resp.StatusCode, domain.ErrResolveFailed)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes: %w", rawURL, f.cfg.MaxBytes, domain.ErrInvalidInput)
	}

	return &domain.RawDocument{
		URI:      rawURL,
		MIMEType: mediaType(resp.Header.Get("Content-Type")),
		Content:  body,
		Metadata: map[string]any{
			"url":     resp.Request.URL.String(),
			"fetched": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// mediaType strips parameters from a Content-Type header.
func mediaType(header string) string {
	if strings.TrimSpace(header) == "" {
		return "text/html"
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "text/html"
	}
	return mt
}
