package driving

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// TagService manages document tags.
type TagService interface {
	AddTags(ctx context.Context, sourceIDs, tags []string) error
	RemoveTags(ctx context.Context, sourceIDs, tags []string) error

	// DeleteTags removes tags from the vocabulary and from every document.
	DeleteTags(ctx context.Context, tags []string) error

	ListTags(ctx context.Context) ([]domain.Tag, error)
	Tagged(ctx context.Context, tag string) ([]domain.Document, error)
}
