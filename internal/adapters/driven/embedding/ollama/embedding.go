// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/litdb/litdb/internal/adapters/driven/jsonapi"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*Service)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultDimensions = 768
	DefaultTimeout    = 60 * time.Second
)

// Config selects the server and model. Zero fields take the defaults.
type Config struct {
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Service embeds through POST /api/embed.
type Service struct {
	api        *jsonapi.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// New returns a service for cfg.
func New(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{
		api:        jsonapi.New("ollama", cfg.BaseURL, cfg.Timeout, domain.ErrEmbeddingUnavailable),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch sends every text in one request.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp embedResponse
	err := s.api.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp)
	if jsonapi.IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%w (try 'ollama pull %s')", err, s.model)
	}
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	out := make([][]float32, len(texts))
	for i, v := range resp.Embeddings {
		if len(v) != s.dimensions {
			return nil, fmt.Errorf("ollama: %s returned %d dimensions, configured %d: %w",
				s.model, len(v), s.dimensions, domain.ErrEmbeddingMismatch)
		}
		out[i] = jsonapi.Float32s(v)
	}
	return out, nil
}

func (s *Service) Dimensions() int   { return s.dimensions }
func (s *Service) ModelName() string { return s.model }

// Ping lists local models.
func (s *Service) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *Service) Close() error { return nil }
