package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Nothing can be added or vector-searched without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrEmbeddingMismatch indicates the configured embedding model or
	// vector width differs from the one the store was created with.
	// Run a re-embed to switch models.
	ErrEmbeddingMismatch = errors.New("embedding model does not match store")

	// ErrRerankUnavailable indicates no cross-encoder is configured.
	ErrRerankUnavailable = errors.New("rerank service unavailable")

	// Metadata Errors.

	// ErrResolveFailed indicates an identifier could not be resolved to a work or author.
	ErrResolveFailed = errors.New("could not resolve identifier")

	// ErrIncompleteSweep indicates a filter replay missed pages or writes.
	// The filter watermark is left unchanged so the next run retries.
	ErrIncompleteSweep = errors.New("filter update incomplete")

	// ErrNoResults indicates a filter expression matched nothing.
	ErrNoResults = errors.New("no results")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
