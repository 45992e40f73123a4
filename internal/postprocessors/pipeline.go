// Package postprocessors turns document text into the chunks that are embedded.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/logger"
	"github.com/litdb/litdb/internal/postprocessors/chunker"
)

var _ driven.PostProcessorPipeline = Pipeline(nil)

// Pipeline runs processors in order, each receiving the previous chunks.
type Pipeline []driven.PostProcessor

// NewPipeline returns the processors as a pipeline.
func NewPipeline(processors ...driven.PostProcessor) Pipeline {
	return Pipeline(processors)
}

// DefaultPipeline chunks with the window from s. Zero sizes keep the
// chunker defaults.
func DefaultPipeline(s domain.EmbeddingSettings) Pipeline {
	var opts []chunker.Option
	if s.ChunkSize > 0 {
		opts = append(opts, chunker.WithChunkSize(s.ChunkSize))
	}
	if s.ChunkOverlap > 0 {
		opts = append(opts, chunker.WithOverlap(s.ChunkOverlap))
	}
	return Pipeline{chunker.New(opts...)}
}

// Process returns the chunks to embed for doc. Every document must yield
// at least one.
func (p Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document: %w", domain.ErrInvalidInput)
	}
	var chunks []domain.Chunk
	for _, proc := range p {
		next, err := proc.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", proc.Name(), err)
		}
		chunks = next
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks for %s: %w", doc.SourceID, domain.ErrInvalidInput)
	}
	logger.Debug("%s: %d chunks", doc.SourceID, len(chunks))
	return chunks, nil
}
