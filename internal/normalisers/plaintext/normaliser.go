// Package plaintext is the fallback normaliser for text formats whose
// markup is kept as is. Org and LaTeX files also yield their title, author
// and date keywords.
package plaintext

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text and lightly marked-up text formats
// (Org, LaTeX, reStructuredText, BibTeX).
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/x-org",
		"text/x-tex",
		"text/x-rst",
		"text/x-bibtex",
		"text/yaml",
		"text/toml",
		"text/csv",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw file to a document keyed by its path.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%s is not UTF-8 text: %w", raw.URI, domain.ErrInvalidInput)
	}

	text := strings.TrimSpace(string(raw.Content))
	var info domain.FileInfo
	switch raw.MIMEType {
	case "text/x-org":
		info = orgKeywords(text)
	case "text/x-tex":
		info = texCommands(text)
	}
	if t, ok := raw.Metadata["title"].(string); ok && t != "" {
		info.Title = t
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID: raw.URI,
			Text:     text,
			Metadata: raw.DocumentMetadata("", info),
		},
	}, nil
}

// orgKeywords reads #+TITLE, #+AUTHOR and #+DATE from the file header.
func orgKeywords(text string) domain.FileInfo {
	var info domain.FileInfo
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#+") {
			continue
		}
		key, value, ok := strings.Cut(line[2:], ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(key) {
		case "TITLE":
			if info.Title == "" {
				info.Title = value
			}
		case "AUTHOR":
			info.Authors = append(info.Authors, splitAuthors(value)...)
		case "DATE":
			info.Year = year(strings.TrimLeft(value, "<["))
		}
	}
	return info
}

var (
	texTitle  = regexp.MustCompile(`\\title\{([^}]*)\}`)
	texAuthor = regexp.MustCompile(`\\author\{([^}]*)\}`)
	texDate   = regexp.MustCompile(`\\date\{([^}]*)\}`)
)

// texCommands reads \title, \author and \date.
func texCommands(text string) domain.FileInfo {
	var info domain.FileInfo
	if m := texTitle.FindStringSubmatch(text); m != nil {
		info.Title = strings.Join(strings.Fields(m[1]), " ")
	}
	if m := texAuthor.FindStringSubmatch(text); m != nil {
		info.Authors = splitAuthors(strings.ReplaceAll(m[1], `\and`, " and "))
	}
	if m := texDate.FindStringSubmatch(text); m != nil {
		info.Year = year(strings.TrimSpace(m[1]))
	}
	return info
}

func splitAuthors(s string) []string {
	var names []string
	for _, part := range strings.Split(s, " and ") {
		for _, name := range strings.Split(part, ",") {
			if name = strings.Join(strings.Fields(name), " "); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func year(s string) int {
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0
	}
	return y
}
