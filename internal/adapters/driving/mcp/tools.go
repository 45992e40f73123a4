package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/litdb/litdb/internal/core/domain"
)

const (
	defaultResults = 3
	previewLength  = 500
	detailsLength  = 1000
	maxAuthors     = 3
)

// SearchInput is the input schema for the search tools.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	N     int    `json:"n,omitempty" jsonschema:"number of results to return (default 3)"`
}

// SourceInput names one stored source.
type SourceInput struct {
	Source string `json:"source" jsonschema:"the source identifier: DOI URL, OpenAlex id, path or URL"`
	N      int    `json:"n,omitempty" jsonschema:"number of results to return (default 3)"`
}

// TagInput names one tag.
type TagInput struct {
	Tag string `json:"tag" jsonschema:"the tag name"`
}

// ArticlesOutput is a ranked list of articles.
type ArticlesOutput struct {
	Results []ArticleOutput `json:"results"`
	Count   int             `json:"count"`
}

// ArticleOutput summarises one stored source.
type ArticleOutput struct {
	Source   string   `json:"source"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Year     int      `json:"year,omitempty"`
	Citation string   `json:"citation,omitempty"`
	Score    float64  `json:"score,omitempty"`
	Snippet  string   `json:"snippet,omitempty"`
	Preview  string   `json:"preview,omitempty"`
}

// DetailsOutput is the full record of a source.
type DetailsOutput struct {
	Source     string   `json:"source"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors,omitempty"`
	Year       int      `json:"year,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	DOI        string   `json:"doi,omitempty"`
	Citation   string   `json:"citation,omitempty"`
	CitedBy    int      `json:"cited_by_count"`
	References int      `json:"referenced_works_count"`
	Text       string   `json:"text"`
}

// CitationOutput is the citation string of a source.
type CitationOutput struct {
	Source   string `json:"source"`
	Citation string `json:"citation"`
}

// TagsOutput lists tags with their document counts.
type TagsOutput struct {
	Tags []TagOutput `json:"tags"`
}

// TagOutput is one tag.
type TagOutput struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AboutOutput describes the server.
type AboutOutput struct {
	Description string `json:"description"`
	Root        string `json:"root"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "about_litdb",
		Description: "Describe the litdb literature database and where it lives",
	}, s.handleAbout)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "vsearch",
		Description: "Vector search over the literature database with a natural language query",
	}, s.handleVectorSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fulltext_search",
		Description: "Full-text search with BM25 ranking; supports FTS5 syntax such as AND, OR and NOT",
	}, s.handleFulltextSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_similar",
		Description: "Find articles similar to a stored source",
	}, s.handleFindSimilar)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_source_details",
			Description: "Get the complete record of a stored source",
		}, s.handleSourceDetails)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_citation",
			Description: "Get the formatted citation of a stored source",
		}, s.handleCitation)
	}

	if s.ports.Tags != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_tags",
			Description: "List all tags with their article counts",
		}, s.handleListTags)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_tagged_articles",
			Description: "Get all articles carrying a tag",
		}, s.handleTaggedArticles)
	}
}

func (s *Server) handleAbout(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, AboutOutput, error) {
	return nil, AboutOutput{
		Description: "litdb is a database of scientific literature. " +
			"It supports vector, full-text and similarity search over stored articles, " +
			"plus citations and tags.",
		Root: s.ports.Root,
	}, nil
}

// handleVectorSearch reports similarity as 1 - cosine distance.
func (s *Server) handleVectorSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, ArticlesOutput, error) {
	results, err := s.ports.Search.VectorSearch(ctx, input.Query, limit(input.N), false)
	if err != nil {
		return nil, ArticlesOutput{}, err
	}
	for i := range results {
		results[i].Score = 1 - results[i].Score
	}
	return nil, articles(results), nil
}

func (s *Server) handleFulltextSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, ArticlesOutput, error) {
	results, err := s.ports.Search.FulltextSearch(ctx, input.Query, limit(input.N))
	if err != nil {
		return nil, ArticlesOutput{}, err
	}
	return nil, articles(results), nil
}

func (s *Server) handleFindSimilar(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SourceInput,
) (*mcp.CallToolResult, ArticlesOutput, error) {
	results, err := s.ports.Search.Similar(ctx, input.Source, limit(input.N))
	if err != nil {
		return nil, ArticlesOutput{}, err
	}
	for i := range results {
		results[i].Score = 1 - results[i].Score
	}
	return nil, articles(results), nil
}

func (s *Server) handleSourceDetails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SourceInput,
) (*mcp.CallToolResult, DetailsOutput, error) {
	doc, err := s.ports.Ingest.Get(ctx, input.Source)
	if err != nil {
		return nil, DetailsOutput{}, err
	}

	out := DetailsOutput{
		Source:     doc.SourceID,
		Title:      doc.Title(),
		Authors:    doc.Authors(),
		Year:       doc.Year(),
		Venue:      nestedString(doc.Metadata, "primary_location", "source", "display_name"),
		DOI:        nestedString(doc.Metadata, "doi"),
		Citation:   doc.Citation(),
		CitedBy:    metadataInt(doc.Metadata, "cited_by_count"),
		References: metadataInt(doc.Metadata, "referenced_works_count"),
		Text:       truncate(doc.Text, detailsLength),
	}
	return nil, out, nil
}

func (s *Server) handleCitation(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SourceInput,
) (*mcp.CallToolResult, CitationOutput, error) {
	doc, err := s.ports.Ingest.Get(ctx, input.Source)
	if err != nil {
		return nil, CitationOutput{}, err
	}
	citation := doc.Citation()
	if citation == "" {
		return nil, CitationOutput{}, fmt.Errorf("no citation available for %s", input.Source)
	}
	return nil, CitationOutput{Source: doc.SourceID, Citation: citation}, nil
}

func (s *Server) handleListTags(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, TagsOutput, error) {
	tags, err := s.ports.Tags.ListTags(ctx)
	if err != nil {
		return nil, TagsOutput{}, err
	}
	out := TagsOutput{Tags: make([]TagOutput, len(tags))}
	for i, t := range tags {
		out.Tags[i] = TagOutput{Name: t.Name, Count: t.Count}
	}
	return nil, out, nil
}

func (s *Server) handleTaggedArticles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TagInput,
) (*mcp.CallToolResult, ArticlesOutput, error) {
	docs, err := s.ports.Tags.Tagged(ctx, input.Tag)
	if err != nil {
		return nil, ArticlesOutput{}, err
	}
	results := make([]domain.SearchResult, len(docs))
	for i := range docs {
		results[i] = domain.SearchResult{Document: docs[i]}
	}
	return nil, articles(results), nil
}

func limit(n int) int {
	if n <= 0 {
		return defaultResults
	}
	return n
}

func articles(results []domain.SearchResult) ArticlesOutput {
	out := ArticlesOutput{
		Results: make([]ArticleOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		doc := results[i].Document
		authors := doc.Authors()
		if len(authors) > maxAuthors {
			authors = append(authors[:maxAuthors:maxAuthors], "et al.")
		}
		out.Results[i] = ArticleOutput{
			Source:   doc.SourceID,
			Title:    doc.Title(),
			Authors:  authors,
			Year:     doc.Year(),
			Citation: doc.Citation(),
			Score:    results[i].Score,
			Snippet:  results[i].Snippet,
			Preview:  truncate(doc.Text, previewLength),
		}
	}
	return out
}

// truncate cuts s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// nestedString follows keys through nested metadata objects.
func nestedString(m map[string]any, keys ...string) string {
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	s, _ := cur.(string)
	return s
}

func metadataInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
