package driven

import "context"

// VectorIndex provides semantic similarity search over stored vectors.
type VectorIndex interface {
	// Search finds the k nearest documents to the query vector by
	// ascending cosine distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Update replaces the stored vector of a document.
	Update(ctx context.Context, sourceID string, embedding []float32) error

	// Declare records the embedding model and width the store uses.
	// The first call on an empty store records them; later calls with a
	// different model or width return domain.ErrEmbeddingMismatch.
	Declare(ctx context.Context, model string, dimensions int) error

	// Redeclare overwrites the recorded model and width. Used when every
	// vector is about to be rebuilt.
	Redeclare(ctx context.Context, model string, dimensions int) error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// SourceID is the matched document.
	SourceID string

	// Distance is the cosine distance (0 = identical direction).
	Distance float64
}
