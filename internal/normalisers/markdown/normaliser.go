// Package markdown normalises markdown notes. YAML ("---") and TOML ("+++")
// front matter supply the title, authors, year and DOI.
package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles markdown documents.
type Normaliser struct{}

// New creates a new markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise strips formatting from the note body. Broken front matter is
// logged and ignored.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	fm, body := splitFrontMatter(string(raw.Content))
	info, err := fm.info()
	if err != nil {
		logger.Warn("Ignoring front matter of %s: %v", raw.URI, err)
	}
	if info.Title == "" {
		info.Title = firstHeading(body)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID: raw.URI,
			Text:     stripMarkdown(body),
			Metadata: raw.DocumentMetadata("markdown", info),
		},
	}, nil
}

type frontMatter struct {
	delim string
	text  string
}

// splitFrontMatter separates a leading front matter block from the body.
func splitFrontMatter(content string) (frontMatter, string) {
	content = strings.TrimPrefix(content, "\ufeff")
	for _, delim := range []string{"---", "+++"} {
		if !strings.HasPrefix(content, delim+"\n") {
			continue
		}
		rest := content[len(delim)+1:]
		end := strings.Index(rest, "\n"+delim)
		if end < 0 {
			continue
		}
		body := rest[end+len(delim)+1:]
		if i := strings.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		} else {
			body = ""
		}
		return frontMatter{delim: delim, text: rest[:end]}, body
	}
	return frontMatter{}, content
}

func (fm frontMatter) info() (domain.FileInfo, error) {
	var fields map[string]any
	switch fm.delim {
	case "---":
		if err := yaml.Unmarshal([]byte(fm.text), &fields); err != nil {
			return domain.FileInfo{}, fmt.Errorf("yaml: %w", err)
		}
	case "+++":
		if err := toml.Unmarshal([]byte(fm.text), &fields); err != nil {
			return domain.FileInfo{}, fmt.Errorf("toml: %w", err)
		}
	default:
		return domain.FileInfo{}, nil
	}

	info := domain.FileInfo{
		Title: stringField(fields["title"]),
		DOI:   stringField(fields["doi"]),
	}
	for _, key := range []string{"authors", "author"} {
		if names := listField(fields[key]); len(names) > 0 {
			info.Authors = names
			break
		}
	}
	info.Year = yearField(fields["year"])
	if info.Year == 0 && fields["date"] != nil {
		info.Year = yearField(fmt.Sprint(fields["date"]))
	}
	return info, nil
}

func stringField(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// listField accepts a single name or a list of names.
func listField(v any) []string {
	switch v := v.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var names []string
		for _, item := range v {
			if s := stringField(item); s != "" {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}

func yearField(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if len(v) >= 4 {
			y, _ := strconv.Atoi(v[:4])
			return y
		}
	}
	return 0
}

// firstHeading returns the text of the first level-one heading.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// Pre-compiled patterns for stripMarkdown.
var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`[^`]+`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
	emphasis     = strings.NewReplacer("**", "", "__", "", "*", "", "_", " ")
)

// stripMarkdown removes common markdown formatting for plain text content.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = emphasis.Replace(content)
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
