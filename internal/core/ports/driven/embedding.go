package driven

import "context"

// EmbeddingService turns text into vectors. Sources cannot be added
// without one, since every document is embedded on insert.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions and ModelName are pinned in the store with the first
	// vector; later writes must match them.
	Dimensions() int
	ModelName() string

	// Ping checks the service answers without embedding anything.
	Ping(ctx context.Context) error
	Close() error
}
