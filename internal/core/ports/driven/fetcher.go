package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// PageFetcher downloads single web pages.
type PageFetcher interface {
	// Fetch returns the body of url with its media type. The result's URI
	// is url as given. Error statuses wrap domain.ErrResolveFailed.
	Fetch(ctx context.Context, url string) (*domain.RawDocument, error)
}
