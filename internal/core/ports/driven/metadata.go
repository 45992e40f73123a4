package driven

import (
	"context"
	"encoding/json"

	"github.com/litdb/litdb/internal/core/domain"
)

// MetadataClient resolves works and authors against OpenAlex.
// Implementations share one rate limit across every caller and retry
// transient failures internally.
type MetadataClient interface {
	// Work fetches one work by DOI or OpenAlex id.
	// Returns domain.ErrResolveFailed when nothing usable came back.
	Work(ctx context.Context, id string) (json.RawMessage, error)

	// Author fetches one author by OpenAlex id or ORCID.
	// Returns domain.ErrResolveFailed when nothing usable came back.
	Author(ctx context.Context, id string) (*domain.Author, error)

	// Works pages through /works for a filter expression, calling fn for
	// every page until fn returns false or the cursor runs out.
	// Returns domain.ErrIncompleteSweep if a page could not be fetched.
	Works(ctx context.Context, filter string, fn func(Page) bool) error

	// WorksAt pages through an absolute works URL, such as an author's
	// works_api_url, with the same contract as Works.
	WorksAt(ctx context.Context, url string, fn func(Page) bool) error
}

// Page is one decoded page of a paginated OpenAlex listing.
type Page struct {
	// Count is meta.count: the total number of matches.
	Count int

	// Results holds the raw work objects of this page.
	Results []json.RawMessage
}
