package driving

import (
	"context"

	"github.com/litdb/litdb/internal/core/domain"
)

// DirectoryService indexes local directories.
type DirectoryService interface {
	// Index adds every supported, not yet stored file under dirs and
	// records the directories. Returns the number of files added.
	Index(ctx context.Context, dirs []string) (int, error)

	// Reindex runs Index over every recorded directory.
	Reindex(ctx context.Context) (int, error)

	// ListDirectories returns the recorded directories.
	ListDirectories(ctx context.Context) ([]domain.Directory, error)

	// WatchDirectories adds files as they appear in recorded directories
	// until ctx is cancelled.
	WatchDirectories(ctx context.Context) error
}
