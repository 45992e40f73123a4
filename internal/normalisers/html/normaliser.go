package html

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the visible text and citation metadata of a page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	p := parse(raw.Content)
	info := p.citation
	if info.Title == "" {
		info.Title = p.title
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID: raw.URI,
			Text:     p.text,
			Metadata: raw.DocumentMetadata("html", info),
		},
	}, nil
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// blocks start and end on their own line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Table: true, atom.Blockquote: true, atom.Pre: true,
	atom.Br: true, atom.Hr: true, atom.Header: true, atom.Footer: true, atom.Figcaption: true,
}

type page struct {
	title    string
	text     string
	citation domain.FileInfo
}

// parse walks the token stream once, collecting text outside skipped
// elements, the <title> and citation meta tags.
func parse(content []byte) page {
	var (
		p       page
		body    strings.Builder
		title   strings.Builder
		depth   int
		inTitle bool
	)

	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			p.title = strings.Join(strings.Fields(title.String()), " ")
			p.text = tidy(body.String())
			return p

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = tt == html.StartTagToken
			case tag == atom.Meta && hasAttr:
				p.meta(z)
			case skipped[tag]:
				if tt == html.StartTagToken {
					depth++
				}
			case tag == atom.Td || tag == atom.Th:
				body.WriteByte(' ')
			case blocks[tag]:
				body.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			switch {
			case tag == atom.Title:
				inTitle = false
			case skipped[tag]:
				if depth > 0 {
					depth--
				}
			case blocks[tag]:
				body.WriteByte('\n')
			}

		case html.TextToken:
			switch {
			case inTitle:
				title.Write(z.Text())
			case depth == 0:
				body.Write(z.Text())
			}
		}
	}
}

// meta reads one <meta name=... content=...> tag.
func (p *page) meta(z *html.Tokenizer) {
	var name, content string
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "name", "property":
			name = strings.ToLower(string(val))
		case "content":
			content = strings.TrimSpace(string(val))
		}
		if !more {
			break
		}
	}
	if content == "" {
		return
	}

	switch name {
	case "citation_title", "dc.title":
		if p.citation.Title == "" {
			p.citation.Title = content
		}
	case "citation_author", "dc.creator":
		p.citation.Authors = append(p.citation.Authors, content)
	case "citation_doi", "dc.identifier":
		if p.citation.DOI == "" && strings.Contains(content, "10.") {
			p.citation.DOI = content
		}
	case "citation_publication_date", "citation_date", "dc.date":
		if p.citation.Year == 0 {
			p.citation.Year = leadingYear(content)
		}
	}
}

// leadingYear reads a year from dates such as "2017/12/04" or "2017-12".
func leadingYear(s string) int {
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return y
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
