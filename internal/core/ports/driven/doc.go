// Package driven lists what the core needs from the outside: storage,
// full-text and vector ranking, embeddings, the OpenAlex client, the
// cross-encoder, file normalisers and connectors, and settings.
//
// Reranker and ConfirmPolicy may be nil. Without a reranker re-rank
// requests fail with ErrRerankUnavailable; a nil policy denies.
package driven
