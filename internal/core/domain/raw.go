package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// RawDocument represents opaque bytes read from a local file.
// It is the connector's output before normalisation.
type RawDocument struct {
	// URI is the absolute file path. It becomes the Document SourceID.
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// ChangeType represents the type of file change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// RawDocumentChange represents a change event from a directory watch.
type RawDocumentChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Document is the affected file.
	Document RawDocument
}

// FileInfo is bibliographic data found inside a file, such as HTML
// citation meta tags, markdown front matter or DOCX core properties.
type FileInfo struct {
	Title   string
	Authors []string
	Year    int
	DOI     string
}

// DocumentMetadata returns a copy of the connector metadata extended with
// the format and info. An empty title falls back to the file name. Files
// naming at least one author get a citation.
func (r *RawDocument) DocumentMetadata(format string, info FileInfo) map[string]any {
	m := make(map[string]any, len(r.Metadata)+6)
	for k, v := range r.Metadata {
		m[k] = v
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = PathTitle(r.URI)
	}
	m["title"] = title
	m["mime_type"] = r.MIMEType
	if format != "" {
		m["format"] = format
	}
	if len(info.Authors) > 0 {
		m["authors"] = info.Authors
	}
	if info.Year > 0 {
		m["publication_year"] = info.Year
	}
	doi := ""
	if info.DOI != "" {
		doi = NormaliseWorkID(info.DOI)
		m["doi"] = doi
	}
	if len(info.Authors) > 0 {
		m["citation"] = fileCitation(title, info.Authors, info.Year, doi)
	}
	return m
}

func fileCitation(title string, authors []string, year int, doi string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString(". ")
	b.WriteString(strings.Join(authors, ", "))
	if year > 0 {
		fmt.Fprintf(&b, " (%d)", year)
	}
	b.WriteString(".")
	if doi != "" {
		b.WriteString(" ")
		b.WriteString(doi)
	}
	return b.String()
}

// PathTitle turns a file path into a readable title, so
// "/notes/reading_list-2024.md" becomes "reading list 2024".
func PathTitle(uri string) string {
	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
