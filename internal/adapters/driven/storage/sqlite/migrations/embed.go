// Package migrations holds the store schema as numbered SQL files,
// NNN_name.up.sql and NNN_name.down.sql.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
