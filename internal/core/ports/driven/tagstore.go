package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// TagStore persists the tag vocabulary and document tags.
type TagStore interface {
	// AddTags attaches tags to a document, creating tags as needed.
	// Returns domain.ErrNotFound if the document does not exist.
	AddTags(ctx context.Context, sourceID string, tags []string) error

	// RemoveTags detaches tags from a document.
	RemoveTags(ctx context.Context, sourceID string, tags []string) error

	// DeleteTag removes a tag and every attachment of it.
	DeleteTag(ctx context.Context, tag string) error

	// ListTags returns every tag with its document count, sorted by name.
	ListTags(ctx context.Context) ([]domain.Tag, error)

	// Tagged returns the documents carrying a tag.
	Tagged(ctx context.Context, tag string) ([]domain.Document, error)

	// TagsFor returns the tags attached to one document.
	TagsFor(ctx context.Context, sourceID string) ([]string, error)
}
