package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// PostProcessor is one step between a document and its embedded chunks.
// The first step receives nil chunks and creates them from doc.Text.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline yields the chunks of a document, at least one.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
