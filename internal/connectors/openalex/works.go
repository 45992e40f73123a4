package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Client implements the metadata port.
var _ driven.MetadataClient = (*Client)(nil)

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// WorksURL returns the works listing endpoint.
func (c *Client) WorksURL() string {
	return c.cfg.BaseURL + "/works"
}

// WorkURL returns the endpoint for one work. DOIs are passed through in
// URL form, OpenAlex URLs are reduced to their short id.
func (c *Client) WorkURL(id string) string {
	id = domain.NormaliseWorkID(id)
	if strings.HasPrefix(id, "https://openalex.org/") {
		id = domain.ShortID(id)
	}
	return c.WorksURL() + "/" + id
}

// AuthorURL returns the endpoint for one author. Bare ORCIDs are prefixed
// with "orcid:".
func (c *Client) AuthorURL(id string) string {
	id = strings.TrimSpace(id)
	switch {
	case orcidPattern.MatchString(id):
		id = "orcid:" + id
	case strings.HasPrefix(id, "https://openalex.org/"):
		id = domain.ShortID(id)
	}
	return c.cfg.BaseURL + "/authors/" + id
}

// Work fetches one work.
func (c *Client) Work(ctx context.Context, id string) (json.RawMessage, error) {
	resp := c.Get(ctx, c.WorkURL(id), nil)
	if !resp.OK {
		return nil, resolveError("work", id, resp)
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.Body, &head); err != nil || head.ID == "" {
		return nil, fmt.Errorf("work %s has no id: %w", id, domain.ErrResolveFailed)
	}
	return resp.Body, nil
}

// Author fetches one author.
func (c *Client) Author(ctx context.Context, id string) (*domain.Author, error) {
	resp := c.Get(ctx, c.AuthorURL(id), nil)
	if !resp.OK {
		return nil, resolveError("author", id, resp)
	}
	var a domain.Author
	if err := json.Unmarshal(resp.Body, &a); err != nil || a.ID == "" {
		return nil, fmt.Errorf("author %s has no id: %w", id, domain.ErrResolveFailed)
	}
	if a.WorksAPIURL == "" {
		a.WorksAPIURL = c.WorksURL() + "?filter=author.id:" + domain.ShortID(a.ID)
	}
	return &a, nil
}

// Works pages through works matching a filter expression.
func (c *Client) Works(ctx context.Context, filter string, fn func(driven.Page) bool) error {
	params := url.Values{}
	if filter != "" {
		params.Set("filter", filter)
	}
	return c.Paginate(ctx, c.WorksURL(), params, pageAdapter(fn))
}

// WorksAt pages through an absolute works listing URL.
func (c *Client) WorksAt(ctx context.Context, rawURL string, fn func(driven.Page) bool) error {
	return c.Paginate(ctx, rawURL, nil, pageAdapter(fn))
}

func pageAdapter(fn func(driven.Page) bool) func(Envelope) bool {
	return func(env Envelope) bool {
		return fn(driven.Page{Count: env.Meta.Count, Results: env.Results})
	}
}

// resolveError explains a failed lookup. OpenAlex answering 404 means the
// identifier is unknown there, which retrying later will not fix.
func resolveError(kind, id string, resp Response) error {
	if IsNotFound(resp.Err) {
		return fmt.Errorf("%s %s is not in OpenAlex: %w", kind, id, domain.ErrResolveFailed)
	}
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrResolveFailed)
}
