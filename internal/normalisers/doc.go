// Package normalisers extracts text from local files. Each subpackage
// handles a family of MIME types; Registry dispatches to the
// highest-priority normaliser registered for a type.
package normalisers
