// Package sqlite is the on-disk store: one litdb.db file opened with
// modernc.org/sqlite. Documents, their FTS5 rows and embeddings, tags,
// saved filters and directories share a single connection pool.
//
// Vector search registers vector_distance_cos as a deterministic scalar
// function and ranks every stored embedding with it. The schema is applied
// from the numbered files in migrations/ and the embedding model and width
// are pinned in schema_meta the first time a vector is written.
package sqlite
