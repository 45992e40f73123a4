package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// NormaliserRegistry dispatches files to normalisers by MIME type, the
// highest priority first. Unknown types fail with domain.ErrUnsupportedType.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(n Normaliser)
	SupportedMIMETypes() []string
}
