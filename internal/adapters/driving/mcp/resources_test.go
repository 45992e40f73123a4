package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
)

func TestExtractTag(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid tag URI",
			uri:      "litdb://tags/reading",
			expected: "reading",
		},
		{
			name:     "percent-encoded tag",
			uri:      "litdb://tags/to%20read",
			expected: "to read",
		},
		{
			name:     "invalid prefix",
			uri:      "file://tags/reading",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "litdb://tags/a/b",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractTag(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleTagsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns tags", func(t *testing.T) {
		tags := &mockTagService{tags: []domain.Tag{{Name: "reading", Count: 2}}}
		server := newTestServer(t, &Ports{Tags: tags})

		result, err := server.handleTagsResource(ctx, makeReadResourceRequest("litdb://tags"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"name": "reading"`)
		assert.Contains(t, result.Contents[0].Text, `"count": 2`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Tags: &mockTagService{err: errors.New("database error")}})

		_, err := server.handleTagsResource(ctx, makeReadResourceRequest("litdb://tags"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing tags")
	})
}

func TestServer_handleTaggedResource(t *testing.T) {
	ctx := context.Background()
	tags := &mockTagService{tagged: map[string][]domain.Document{
		"reading": {paper("https://doi.org/10.1/a", "Graph nets", 2021)},
	}}
	server := newTestServer(t, &Ports{Tags: tags})

	t.Run("returns tagged articles", func(t *testing.T) {
		result, err := server.handleTaggedResource(ctx, makeReadResourceRequest("litdb://tags/reading"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "https://doi.org/10.1/a")
		assert.Contains(t, result.Contents[0].Text, "Graph nets")
	})

	t.Run("unknown tag returns not found", func(t *testing.T) {
		_, err := server.handleTaggedResource(ctx, makeReadResourceRequest("litdb://tags/none"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		_, err := server.handleTaggedResource(ctx, makeReadResourceRequest("litdb://invalid/uri"))
		require.Error(t, err)
	})
}
