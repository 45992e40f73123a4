package driven

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// DirectoryStore persists indexed local directories.
type DirectoryStore interface {
	// SaveDirectory inserts or updates a directory.
	SaveDirectory(ctx context.Context, d domain.Directory) error

	// ListDirectories returns every directory ordered by path.
	ListDirectories(ctx context.Context) ([]domain.Directory, error)

	// DeleteDirectory removes a directory record. Documents are kept.
	DeleteDirectory(ctx context.Context, path string) error
}
