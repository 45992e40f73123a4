// Package domain holds litdb's core types: stored documents, OpenAlex works
// and authors, saved filters, tags, indexed directories and settings.
// It imports nothing outside the standard library.
package domain
