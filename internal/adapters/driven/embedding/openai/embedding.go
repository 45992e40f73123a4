// Package openai embeds text through an OpenAI-compatible /embeddings
// endpoint.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/litdb/litdb/internal/adapters/driven/jsonapi"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*Service)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// DefaultMaxInputs is the most inputs the API takes per request.
	DefaultMaxInputs = 2048
)

// Native widths of the hosted models. Other models must set Dimensions.
var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config selects the endpoint and model. APIKey is required.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
	MaxInputs  int
}

// Service is an embedding service backed by the OpenAI API.
type Service struct {
	api        *jsonapi.Client
	model      string
	dimensions int
	shorten    bool
	maxInputs  int
}

type request struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type response struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// New validates cfg and fills in defaults.
func New(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required: %w", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputs <= 0 {
		cfg.MaxInputs = DefaultMaxInputs
	}

	native, known := nativeDimensions[cfg.Model]
	dims := cfg.Dimensions
	if dims == 0 {
		if !known {
			return nil, fmt.Errorf("openai: model %q needs explicit dimensions: %w", cfg.Model, domain.ErrInvalidInput)
		}
		dims = native
	}

	api := jsonapi.New("openai", cfg.BaseURL, cfg.Timeout, domain.ErrEmbeddingUnavailable)
	api.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &Service{
		api:        api,
		model:      cfg.Model,
		dimensions: dims,
		// Only the v3 models accept a shortened width.
		shorten:   strings.HasPrefix(cfg.Model, "text-embedding-3-") && dims != native,
		maxInputs: cfg.MaxInputs,
	}, nil
}

func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch splits texts into requests of at most MaxInputs and returns
// vectors in input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.maxInputs {
		part, err := s.embed(ctx, texts[start:min(start+s.maxInputs, len(texts))])
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := request{Model: s.model, Input: texts}
	if s.shorten {
		req.Dimensions = s.dimensions
	}
	var resp response
	if err := s.api.Post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = jsonapi.Float32s(d.Embedding)
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("openai: no embedding for input %d", i)
		}
	}
	return vecs, nil
}

func (s *Service) Dimensions() int   { return s.dimensions }
func (s *Service) ModelName() string { return s.model }

// Ping lists models, which checks the key without running inference.
func (s *Service) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models", nil)
}

func (s *Service) Close() error { return nil }
