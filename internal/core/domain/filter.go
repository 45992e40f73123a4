package domain

import "time"

// DateLayout is the format of filter and directory watermarks.
const DateLayout = "2006-01-02"

// DefaultLookback is how far back a filter with no watermark searches.
const DefaultLookback = 365 * 24 * time.Hour

// Filter is a saved OpenAlex filter expression.
type Filter struct {
	// Expr is the OpenAlex filter string, e.g. "author.orcid:0000-...".
	Expr string

	// Description is free text shown in listings.
	Description string

	// LastUpdated is the YYYY-MM-DD date of the last complete replay,
	// empty when the filter has never run.
	LastUpdated string
}

// Since returns the from_created_date for the next replay.
func (f Filter) Since(now time.Time) string {
	if f.LastUpdated != "" {
		return f.LastUpdated
	}
	return now.Add(-DefaultLookback).Format(DateLayout)
}

// Directory is a local directory indexed into the store.
type Directory struct {
	// Path is the absolute directory path.
	Path string

	// LastUpdated is the YYYY-MM-DD date of the last index run.
	LastUpdated string
}

// Tag is a label with the number of documents carrying it.
type Tag struct {
	Name  string
	Count int
}

// CitesFilter selects works citing workID.
func CitesFilter(workID string) string {
	return "cites:" + ShortID(workID)
}

// RelatedFilter selects works related to workID.
func RelatedFilter(workID string) string {
	return "related_to:" + ShortID(workID)
}

// OrcidFilter selects works by the author with the given ORCID.
func OrcidFilter(orcid string) string {
	return "author.orcid:" + orcid
}

// WithCreatedSince appends a from_created_date clause to a filter.
func WithCreatedSince(expr, date string) string {
	return expr + ",from_created_date:" + date
}
