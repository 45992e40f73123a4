package mcp

import (
	"errors"

	"github.com/litdb/litdb/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewServer without a search service.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports are the services the server reads from. Search is required;
// Ingest enables details and citations, Tags enables the tag tools and
// resources.
type Ports struct {
	Search driving.SearchService
	Ingest driving.IngestService
	Tags   driving.TagService

	// Root is the database directory reported by about_litdb.
	Root string
}

func (p *Ports) validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
