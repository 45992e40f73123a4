package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// ConfirmPolicy decides whether a potentially large operation may proceed.
// The CLI implementation prompts on a terminal; services treat a nil
// policy as a denial.
type ConfirmPolicy interface {
	Confirm(ctx context.Context, req domain.ConfirmRequest) domain.Decision
}

// ConfirmFunc adapts a function to ConfirmPolicy.
type ConfirmFunc func(ctx context.Context, req domain.ConfirmRequest) domain.Decision

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, req domain.ConfirmRequest) domain.Decision {
	return f(ctx, req)
}
