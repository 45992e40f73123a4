package driving

import "context"

// ImportService adds single local files and web pages.
type ImportService interface {
	// AddFile stores the file at path under its absolute path. A .bib file
	// also has the DOIs of its entries resolved as works.
	AddFile(ctx context.Context, path string) (sourceID string, added bool, err error)

	// AddURL downloads a web page and stores its text under url.
	AddURL(ctx context.Context, url string) (added bool, err error)
}
