package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// DocumentStore persists documents together with their full-text rows.
// Backed by SQLite.
type DocumentStore interface {
	// AddDocument inserts a document and its full-text row in a single
	// transaction. If a document with the same SourceID exists nothing is
	// written and added is false.
	AddDocument(ctx context.Context, doc *domain.Document) (added bool, err error)

	// Exists reports whether any of ids is stored, either as a SourceID or
	// as the OpenAlex id recorded in a work's metadata.
	Exists(ctx context.Context, ids ...string) (bool, error)

	// GetDocument retrieves a document by SourceID, including its embedding.
	// Returns domain.ErrNotFound if absent.
	GetDocument(ctx context.Context, sourceID string) (*domain.Document, error)

	// GetDocuments retrieves several documents, preserving the order of ids.
	// Unknown ids are skipped.
	GetDocuments(ctx context.Context, sourceIDs []string) ([]domain.Document, error)

	// DeleteDocument removes a document, its full-text row and its tags.
	DeleteDocument(ctx context.Context, sourceID string) error

	// ListDocuments returns every document without embeddings.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
