// Package bibtex reads BibTeX libraries. The file is stored as one source
// and the DOIs of its entries are listed so they can be resolved as works.
package bibtex

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles .bib files.
type Normaliser struct{}

// New creates a BibTeX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/x-bibtex"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise stores the library text and collects entry DOIs under "dois".
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%s is not UTF-8 text: %w", raw.URI, domain.ErrInvalidInput)
	}

	text := strings.TrimSpace(string(raw.Content))
	entries := Parse(text)

	meta := raw.DocumentMetadata("bibtex", domain.FileInfo{})
	meta["entries"] = len(entries)
	var dois []string
	seen := make(map[string]bool)
	for _, e := range entries {
		doi := e.Fields["doi"]
		if doi == "" {
			continue
		}
		doi = domain.NormaliseWorkID(doi)
		if !seen[doi] {
			seen[doi] = true
			dois = append(dois, doi)
		}
	}
	if len(dois) > 0 {
		meta["dois"] = dois
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID: raw.URI,
			Text:     text,
			Metadata: meta,
		},
	}, nil
}

// Entry is one @type{key, field = value, ...} record. Field names are
// lower-cased; @comment, @preamble and @string blocks are skipped.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// Parse scans every entry in src. Malformed entries end the scan; the
// entries read before them are returned.
func Parse(src string) []Entry {
	p := &parser{src: src}
	var out []Entry
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return out
		}
		p.pos += at + 1
		typ := strings.ToLower(p.ident())
		p.space()
		if !p.consume('{') && !p.consume('(') {
			continue
		}
		switch typ {
		case "comment", "preamble", "string":
			if !p.skipGroup() {
				return out
			}
			continue
		}
		e, ok := p.entry(typ)
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

type parser struct {
	src string
	pos int
}

func (p *parser) entry(typ string) (Entry, bool) {
	e := Entry{Type: typ, Fields: make(map[string]string)}
	p.space()
	e.Key = strings.TrimSpace(p.until(",}"))
	for {
		p.space()
		if p.consume('}') || p.consume(')') {
			return e, true
		}
		if !p.consume(',') && p.pos >= len(p.src) {
			return e, false
		}
		p.space()
		if p.consume('}') || p.consume(')') {
			return e, true
		}
		name := strings.ToLower(p.ident())
		if name == "" {
			return e, false
		}
		p.space()
		if !p.consume('=') {
			return e, false
		}
		value, ok := p.value()
		if !ok {
			return e, false
		}
		e.Fields[name] = strings.Join(strings.Fields(value), " ")
	}
}

// value reads braced, quoted or bare values joined with #.
func (p *parser) value() (string, bool) {
	var b strings.Builder
	for {
		p.space()
		if p.pos >= len(p.src) {
			return "", false
		}
		switch p.src[p.pos] {
		case '{':
			start := p.pos + 1
			if !p.skipBraced() {
				return "", false
			}
			b.WriteString(strings.NewReplacer("{", "", "}", "").Replace(p.src[start : p.pos-1]))
		case '"':
			p.pos++
			end := strings.IndexByte(p.src[p.pos:], '"')
			if end < 0 {
				return "", false
			}
			b.WriteString(p.src[p.pos : p.pos+end])
			p.pos += end + 1
		default:
			b.WriteString(p.ident())
		}
		p.space()
		if !p.consume('#') {
			return b.String(), true
		}
	}
}

// skipGroup skips to the brace closing a group already opened.
func (p *parser) skipGroup() bool {
	depth := 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
			if depth == 0 {
				p.pos++
				return true
			}
		}
	}
	return false
}

// skipBraced skips a braced value starting at the current brace.
func (p *parser) skipBraced() bool {
	p.pos++
	depth := 1
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				p.pos++
				return true
			}
		}
	}
	return false
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(" \t\r\n{}(),=#\"", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) until(stops string) string {
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(stops, rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) space() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}
