package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawDocumentChange(t *testing.T) {
	change := RawDocumentChange{
		Type: ChangeCreated,
		Document: RawDocument{
			URI:      "/home/user/papers/notes.md",
			MIMEType: "text/markdown",
			Content:  []byte("# Notes"),
		},
	}

	assert.Equal(t, ChangeCreated, change.Type)
	assert.Equal(t, "text/markdown", change.Document.MIMEType)
	assert.NotEqual(t, ChangeCreated, ChangeUpdated)
	assert.NotEqual(t, ChangeUpdated, ChangeDeleted)
}

func TestPathTitle(t *testing.T) {
	assert.Equal(t, "reading list 2024", PathTitle("/notes/reading_list-2024.md"))
	assert.Equal(t, "README", PathTitle("README"))
}

func TestRawDocument_DocumentMetadata(t *testing.T) {
	raw := &RawDocument{
		URI:      "/papers/attention.html",
		MIMEType: "text/html",
		Metadata: map[string]any{"size": int64(10)},
	}

	m := raw.DocumentMetadata("html", FileInfo{
		Title:   "Attention Is All You Need",
		Authors: []string{"A. Vaswani", "N. Shazeer"},
		Year:    2017,
		DOI:     "10.5555/3295222",
	})

	assert.Equal(t, "Attention Is All You Need", m["title"])
	assert.Equal(t, "html", m["format"])
	assert.Equal(t, "text/html", m["mime_type"])
	assert.Equal(t, int64(10), m["size"])
	assert.Equal(t, 2017, m["publication_year"])
	assert.Equal(t, "https://doi.org/10.5555/3295222", m["doi"])
	assert.Equal(t,
		"Attention Is All You Need. A. Vaswani, N. Shazeer (2017). https://doi.org/10.5555/3295222",
		m["citation"])
	assert.Len(t, raw.Metadata, 1)
}

func TestRawDocument_DocumentMetadataFallbacks(t *testing.T) {
	raw := &RawDocument{URI: "/notes/my_notes.txt", MIMEType: "text/plain"}

	m := raw.DocumentMetadata("", FileInfo{})

	assert.Equal(t, "my notes", m["title"])
	assert.NotContains(t, m, "format")
	assert.NotContains(t, m, "citation")
	assert.NotContains(t, m, "authors")

	doc := Document{Metadata: m}
	assert.Empty(t, doc.Authors())
	assert.Zero(t, doc.Year())
}
