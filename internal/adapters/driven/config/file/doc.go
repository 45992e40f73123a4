// Package file keeps litdb settings in litdb.toml inside the database
// directory.
package file
