package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/logger"
)

// StartCursor begins cursor pagination.
const StartCursor = "*"

// Envelope is a decoded listing page.
type Envelope struct {
	Meta    Meta              `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

// Meta is the listing metadata. NextCursor is nil on the last page.
type Meta struct {
	Count      int     `json:"count"`
	NextCursor *string `json:"next_cursor"`
}

// Next returns the next cursor, or "" when there is none.
func (m Meta) Next() string {
	if m.NextCursor == nil {
		return ""
	}
	return *m.NextCursor
}

// Paginate follows cursor pagination from StartCursor, calling fn with every
// page. It stops when the cursor runs out, when fn returns false, or when a
// page cannot be fetched; in the last case it returns
// domain.ErrIncompleteSweep.
func (c *Client) Paginate(ctx context.Context, rawURL string, params url.Values, fn func(Envelope) bool) error {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	if q.Get("per-page") == "" {
		q.Set("per-page", strconv.Itoa(c.cfg.PerPage))
	}

	cursor := StartCursor
	for pages := 0; cursor != ""; pages++ {
		q.Set("cursor", cursor)
		resp := c.Get(ctx, rawURL, q)
		if !resp.OK {
			return fmt.Errorf("page %d of %s: %w", pages+1, rawURL, domain.ErrIncompleteSweep)
		}

		var env Envelope
		if err := json.Unmarshal(resp.Body, &env); err != nil {
			logger.Warn("openalex: undecodable page from %s: %v", rawURL, err)
			return fmt.Errorf("decode page %d of %s: %w", pages+1, rawURL, domain.ErrIncompleteSweep)
		}

		if !fn(env) {
			return nil
		}

		next := env.Meta.Next()
		if next == cursor {
			// A cursor that does not advance would loop forever.
			logger.Warn("openalex: cursor did not advance for %s", rawURL)
			return nil
		}
		cursor = next
	}
	return nil
}
