package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"modernc.org/sqlite"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

const (
	metaEmbeddingModel      = "embedding_model"
	metaEmbeddingDimensions = "embedding_dimensions"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions installs the vector_distance_cos SQL function on the
// driver. It must run before the first connection is opened.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("vector_distance_cos", 2, vectorDistanceCos)
	})
	return registerErr
}

// vectorDistanceCos returns 1 - cosine similarity of two float32 blobs.
func vectorDistanceCos(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if args[0] == nil || args[1] == nil {
		return nil, nil
	}
	a, ok := args[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("vector_distance_cos: expected blob, got %T", args[0])
	}
	b, ok := args[1].([]byte)
	if !ok {
		return nil, fmt.Errorf("vector_distance_cos: expected blob, got %T", args[1])
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vector_distance_cos: dimension mismatch %d != %d", len(a)/4, len(b)/4)
	}
	return cosineDistance(bytesToFloat32Slice(a), bytesToFloat32Slice(b)), nil
}

// cosineDistance returns 1 - cos(a, b); a zero vector is at distance 1.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex over the sources.embedding column.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Search returns the k nearest documents, closest first, ties by source id.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("empty query vector: %w", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT source, vector_distance_cos(embedding, ?) AS d
		FROM sources
		WHERE embedding IS NOT NULL
		ORDER BY d, source
		LIMIT ?
	`, float32SliceToBytes(query), k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var hit driven.VectorHit
		if err := rows.Scan(&hit.SourceID, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scanning vector hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// Update replaces the stored vector of a document.
func (v *vectorIndex) Update(ctx context.Context, sourceID string, embedding []float32) error {
	res, err := v.store.db.ExecContext(ctx,
		"UPDATE sources SET embedding = ? WHERE source = ?", float32SliceToBytes(embedding), sourceID)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Declare records the embedding model on first use and rejects a
// different model or dimension once documents are stored.
func (v *vectorIndex) Declare(ctx context.Context, model string, dims int) error {
	current, currentDims, err := v.declared(ctx)
	if err != nil {
		return err
	}
	if current == "" || (current == model && currentDims == dims) {
		if current == "" {
			return v.Redeclare(ctx, model, dims)
		}
		return nil
	}

	var n int
	if err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&n); err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	if n == 0 {
		return v.Redeclare(ctx, model, dims)
	}
	return fmt.Errorf("store uses %s (%d dims), configured %s (%d dims): %w",
		current, currentDims, model, dims, domain.ErrEmbeddingMismatch)
}

// Redeclare overwrites the recorded embedding model.
func (v *vectorIndex) Redeclare(ctx context.Context, model string, dims int) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for key, value := range map[string]string{
		metaEmbeddingModel:      model,
		metaEmbeddingDimensions: strconv.Itoa(dims),
	} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schema_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// declared returns the recorded model and dimensions, "" when unset.
func (v *vectorIndex) declared(ctx context.Context) (string, int, error) {
	var model, dims string
	err := v.store.db.QueryRowContext(ctx,
		"SELECT value FROM schema_meta WHERE key = ?", metaEmbeddingModel).Scan(&model)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("reading embedding model: %w", err)
	}
	err = v.store.db.QueryRowContext(ctx,
		"SELECT value FROM schema_meta WHERE key = ?", metaEmbeddingDimensions).Scan(&dims)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("reading embedding dimensions: %w", err)
	}
	n, _ := strconv.Atoi(dims)
	return model, n, nil
}
