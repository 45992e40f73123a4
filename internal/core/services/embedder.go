package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/logger"
)

// Embedder turns document text into a single vector: the text is chunked by
// the post-processor pipeline, the chunks are embedded in one batch and the
// chunk vectors are averaged.
type Embedder struct {
	pipeline driven.PostProcessorPipeline
	service  driven.EmbeddingService
	vectors  driven.VectorIndex

	mu       sync.Mutex
	declared bool
}

// NewEmbedder creates an embedder. vectors may be nil when the caller never
// writes (e.g. query embedding only).
func NewEmbedder(
	pipeline driven.PostProcessorPipeline,
	service driven.EmbeddingService,
	vectors driven.VectorIndex,
) *Embedder {
	return &Embedder{
		pipeline: pipeline,
		service:  service,
		vectors:  vectors,
	}
}

// Embed returns the mean of the chunk embeddings of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.service == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	chunks, err := e.pipeline.Process(ctx, &domain.Document{SourceID: "embed", Text: text})
	if err != nil {
		return nil, fmt.Errorf("chunking: %w", err)
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	logger.Debug("Embedding %d chunks with %s", len(texts), e.service.ModelName())

	vectors, err := e.service.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	return meanVector(vectors, e.service.Dimensions())
}

// Declare records the model in the vector index once per process.
func (e *Embedder) Declare(ctx context.Context) error {
	if e.vectors == nil || e.service == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.declared {
		return nil
	}
	if err := e.vectors.Declare(ctx, e.service.ModelName(), e.service.Dimensions()); err != nil {
		return err
	}
	e.declared = true
	return nil
}

// Redeclare replaces the recorded model ahead of a full rebuild.
func (e *Embedder) Redeclare(ctx context.Context) error {
	if e.vectors == nil || e.service == nil {
		return domain.ErrEmbeddingUnavailable
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.vectors.Redeclare(ctx, e.service.ModelName(), e.service.Dimensions()); err != nil {
		return err
	}
	e.declared = true
	return nil
}

// meanVector averages equal-width vectors. dims > 0 is enforced.
func meanVector(vectors [][]float32, dims int) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors returned: %w", domain.ErrEmbeddingUnavailable)
	}
	width := len(vectors[0])
	if dims > 0 && width != dims {
		return nil, fmt.Errorf("model returned %d dims, expected %d: %w", width, dims, domain.ErrEmbeddingMismatch)
	}

	sum := make([]float64, width)
	for _, v := range vectors {
		if len(v) != width {
			return nil, fmt.Errorf("ragged embedding batch: %w", domain.ErrEmbeddingMismatch)
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}
	mean := make([]float32, width)
	for i, x := range sum {
		mean[i] = float32(x / float64(len(vectors)))
	}
	return mean, nil
}
