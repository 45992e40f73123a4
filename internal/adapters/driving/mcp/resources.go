package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for litdb resources.
	uriScheme = "litdb://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Tags == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tags",
		Name:        "tags",
		Description: "All tags with their article counts",
		MIMEType:    "application/json",
	}, s.handleTagsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tags/{tag}",
		Name:        "tagged-articles",
		Description: "Articles carrying a specific tag",
		MIMEType:    "application/json",
	}, s.handleTaggedResource)
}

// handleTagsResource returns the tag list.
func (s *Server) handleTagsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleListTags(ctx, nil, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return jsonResource(req.Params.URI, out.Tags)
}

// handleTaggedResource returns the articles for the tag in the URI.
func (s *Server) handleTaggedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tag := extractTag(req.Params.URI)
	if tag == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	_, out, err := s.handleTaggedArticles(ctx, nil, TagInput{Tag: tag})
	if err != nil {
		return nil, fmt.Errorf("listing tagged articles: %w", err)
	}
	if out.Count == 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, out.Results)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTag extracts the tag from a URI like "litdb://tags/{tag}".
// Tags may be percent-encoded.
func extractTag(uri string) string {
	prefix := uriScheme + "tags/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	tag, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil || strings.Contains(tag, "/") {
		return ""
	}
	return tag
}
