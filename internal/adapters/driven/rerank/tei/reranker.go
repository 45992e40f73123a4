// Package tei provides a cross-encoder reranker backed by a Text
// Embeddings Inference server's /rerank endpoint.
package tei

import (
	"context"
	"fmt"
	"time"

	"github.com/litdb/litdb/internal/adapters/driven/jsonapi"
	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultTimeout bounds a single rerank call.
const DefaultTimeout = 60 * time.Second

// Config holds configuration for the reranker.
type Config struct {
	// BaseURL is the server base URL, e.g. http://localhost:8080.
	BaseURL string

	// Model is sent along with the request; TEI ignores it but
	// compatible gateways route on it.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Reranker scores query/text pairs.
type Reranker struct {
	api   *jsonapi.Client
	model string
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	Model     string   `json:"model,omitempty"`
	RawScores bool     `json:"raw_scores"`
}

type rerankItem struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// New creates a reranker. BaseURL is required.
func New(cfg Config) (*Reranker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rerank base url: %w", domain.ErrRerankUnavailable)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Reranker{
		api:   jsonapi.New("rerank", cfg.BaseURL, cfg.Timeout, domain.ErrRerankUnavailable),
		model: cfg.Model,
	}, nil
}

// Rerank returns one score per text, in input order.
func (r *Reranker) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var items []rerankItem
	if err := r.api.Post(ctx, "/rerank", rerankRequest{Query: query, Texts: texts, Model: r.model}, &items); err != nil {
		return nil, err
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, item := range items {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("rerank index %d out of range", item.Index)
		}
		scores[item.Index] = item.Score
		seen[item.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank returned no score for text %d", i)
		}
	}
	return scores, nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}
