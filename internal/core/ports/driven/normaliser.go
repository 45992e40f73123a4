package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// Normaliser reads the text and citation metadata out of one kind of file.
type Normaliser interface {
	SupportedMIMETypes() []string

	// Priority orders normalisers sharing a MIME type. Format readers use
	// 50 and up, plain-text fallbacks stay below 10.
	Priority() int

	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult holds a document keyed by the file path, with Text and
// Metadata set. Embedding happens later, on insert.
type NormaliseResult struct {
	Document domain.Document
}
