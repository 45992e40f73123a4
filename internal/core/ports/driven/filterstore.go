package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// FilterStore persists saved OpenAlex filters and their watermarks.
type FilterStore interface {
	// SaveFilter inserts a filter or replaces the description and watermark
	// of an existing one.
	SaveFilter(ctx context.Context, f domain.Filter) error

	// GetFilter returns a filter by expression, or domain.ErrNotFound.
	GetFilter(ctx context.Context, expr string) (*domain.Filter, error)

	// DeleteFilter removes a filter. Returns domain.ErrNotFound if absent.
	DeleteFilter(ctx context.Context, expr string) error

	// ListFilters returns every filter ordered by expression.
	ListFilters(ctx context.Context) ([]domain.Filter, error)

	// SetLastUpdated advances a filter's watermark.
	SetLastUpdated(ctx context.Context, expr, date string) error
}
