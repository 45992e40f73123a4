package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// Connector reads documents from one local directory tree.
type Connector interface {
	// Root returns the directory this connector reads.
	Root() string

	// Validate checks the directory exists and is readable.
	Validate(ctx context.Context) error

	// FullSync walks the directory and emits every supported file.
	// Both channels are closed when the walk finishes.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch emits changes to supported files until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// ReadFile reads one named file whatever its extension. Files of an
	// unknown type are read as plain text.
	ReadFile(ctx context.Context, path string) (*domain.RawDocument, error)

	// Close releases resources.
	Close() error
}

// ConnectorBuilder creates a Connector for a directory.
type ConnectorBuilder func(root string) Connector
