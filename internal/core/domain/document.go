package domain

import (
	"encoding/json"
	"time"
)

// Document is a stored source: a bibliographic work, a local file or a
// web page. SourceID is unique across the store.
type Document struct {
	// SourceID is the unique key: a DOI URL, OpenAlex work id,
	// absolute file path or URL.
	SourceID string

	// Text is the rendered text that was embedded and indexed.
	Text string

	// Metadata is opaque. Works keep the raw OpenAlex object here plus a
	// "citation" field; files keep title and mime_type.
	Metadata map[string]any

	// Embedding is the mean of the chunk vectors. It may be nil when a
	// document is loaded without its vector.
	Embedding []float32

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time
}

// Title returns a display title from metadata, falling back to the source id.
func (d Document) Title() string {
	if d.Metadata != nil {
		for _, key := range []string{"display_name", "title"} {
			if s, ok := d.Metadata[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return d.SourceID
}

// Citation returns the stored citation string, if any.
func (d Document) Citation() string {
	if d.Metadata == nil {
		return ""
	}
	s, _ := d.Metadata["citation"].(string)
	return s
}

// Authors returns the author names recorded in OpenAlex authorships
// metadata, in order. Indexed files keep a plain "authors" list instead.
func (d Document) Authors() []string {
	switch plain := d.Metadata["authors"].(type) {
	case []string:
		return plain
	case []any:
		names := make([]string, 0, len(plain))
		for _, a := range plain {
			if name, ok := a.(string); ok && name != "" {
				names = append(names, name)
			}
		}
		return names
	}

	list, _ := d.Metadata["authorships"].([]any)
	names := make([]string, 0, len(list))
	for _, a := range list {
		entry, _ := a.(map[string]any)
		author, _ := entry["author"].(map[string]any)
		if name, ok := author["display_name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Year returns the publication year from metadata, or 0.
func (d Document) Year() int {
	switch y := d.Metadata["publication_year"].(type) {
	case float64:
		return int(y)
	case int:
		return y
	case int64:
		return int(y)
	case json.Number:
		n, _ := y.Int64()
		return int(n)
	}
	return 0
}

// Chunk is a window of document text that is embedded on its own.
// Chunks are transient: only the pooled document vector is stored.
type Chunk struct {
	// ID is deterministic for a given document and position.
	ID string

	// DocumentID links to the parent Document's SourceID.
	DocumentID string

	// Content is the text of this window.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector for this window.
	Embedding []float32
}
