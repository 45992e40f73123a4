package domain

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
)

const (
	openAlexPrefix = "https://openalex.org/"
	doiPrefix      = "https://doi.org/"
)

// Work is a typed view over an OpenAlex work object.
// Only the fields litdb reads are decoded; the raw object is kept separately
// as Document metadata.
type Work struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"`
	Title                 string           `json:"title"`
	DisplayName           string           `json:"display_name"`
	PublicationYear       int              `json:"publication_year"`
	Type                  string           `json:"type"`
	Authorships           []Authorship     `json:"authorships"`
	PrimaryLocation       *Location        `json:"primary_location"`
	ReferencedWorks       []string         `json:"referenced_works"`
	RelatedWorks          []string         `json:"related_works"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Biblio                Biblio           `json:"biblio"`
	CitedByCount          int              `json:"cited_by_count"`
}

// Authorship links a work to one author.
type Authorship struct {
	Author AuthorRef `json:"author"`
}

// AuthorRef is the short author object embedded in a work.
type AuthorRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
}

// Location is where a work is hosted.
type Location struct {
	Source *HostSource `json:"source"`
}

// HostSource is the journal, repository or conference hosting a work.
type HostSource struct {
	DisplayName string `json:"display_name"`
}

// Biblio holds volume and page information.
type Biblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

// Author is an OpenAlex author object.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid"`
	WorksAPIURL string `json:"works_api_url"`
	WorksCount  int    `json:"works_count"`
}

// ParseWork decodes a raw OpenAlex work into its typed view and a generic
// map suitable for Document metadata.
func ParseWork(raw json.RawMessage) (Work, map[string]any, error) {
	var w Work
	if err := json.Unmarshal(raw, &w); err != nil {
		return Work{}, nil, fmt.Errorf("decode work: %v: %w", err, ErrResolveFailed)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Work{}, nil, fmt.Errorf("decode work metadata: %v: %w", err, ErrResolveFailed)
	}
	if w.ID == "" {
		return Work{}, nil, fmt.Errorf("work has no id: %w", ErrResolveFailed)
	}
	return w, m, nil
}

// Key returns the source id a work is stored under: the DOI when present,
// otherwise the OpenAlex id.
func (w Work) Key() string {
	if w.DOI != "" {
		return NormaliseWorkID(w.DOI)
	}
	return w.ID
}

// ShortID returns the bare OpenAlex id, e.g. "W2741809807".
func (w Work) ShortID() string {
	return ShortID(w.ID)
}

// Host returns the display name of the hosting source.
func (w Work) Host() string {
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil && w.PrimaryLocation.Source.DisplayName != "" {
		return w.PrimaryLocation.Source.DisplayName
	}
	return "No host"
}

// AuthorNames returns the author display names in order.
func (w Work) AuthorNames() []string {
	names := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		names = append(names, a.Author.DisplayName)
	}
	return names
}

// Abstract rebuilds the abstract from the inverted index, with HTML removed.
func (w Work) Abstract() string {
	if len(w.AbstractInvertedIndex) == 0 {
		return "No abstract"
	}
	type position struct {
		word  string
		index int
	}
	var words []position
	for word, indexes := range w.AbstractInvertedIndex {
		for _, i := range indexes {
			words = append(words, position{word: word, index: i})
		}
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].index != words[j].index {
			return words[i].index < words[j].index
		}
		return words[i].word < words[j].word
	})
	parts := make([]string, len(words))
	for i, p := range words {
		parts[i] = p.word
	}
	return StripHTML(strings.Join(parts, " "))
}

// Text renders the text that is embedded and full-text indexed for a work:
// "title, authors, host (year) id" followed by a blank line and the abstract.
func (w Work) Text() string {
	title := w.DisplayName
	if title == "" {
		title = "No title"
	}
	year := "None"
	if w.PublicationYear != 0 {
		year = fmt.Sprintf("%d", w.PublicationYear)
	}
	return fmt.Sprintf("%s, %s, %s (%s) %s\n\n%s",
		title, strings.Join(w.AuthorNames(), ", "), w.Host(), year, w.ID, w.Abstract())
}

// Citation formats a plain-text reference for the work.
func (w Work) Citation() string {
	var b strings.Builder
	title := w.DisplayName
	if title == "" {
		title = w.Title
	}
	if title != "" {
		b.WriteString(StripHTML(title))
		b.WriteString(". ")
	}
	if names := w.AuthorNames(); len(names) > 0 {
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(". ")
	}
	if host := w.Host(); host != "No host" {
		b.WriteString(host)
	}
	if w.Biblio.Volume != "" {
		b.WriteString(", ")
		b.WriteString(w.Biblio.Volume)
		if w.Biblio.Issue != "" {
			b.WriteString("(" + w.Biblio.Issue + ")")
		}
	}
	if w.Biblio.FirstPage != "" {
		b.WriteString(", ")
		b.WriteString(w.Biblio.FirstPage)
		if w.Biblio.LastPage != "" && w.Biblio.LastPage != w.Biblio.FirstPage {
			b.WriteString("-" + w.Biblio.LastPage)
		}
	}
	if w.PublicationYear != 0 {
		fmt.Fprintf(&b, " (%d)", w.PublicationYear)
	}
	b.WriteString(". ")
	if w.DOI != "" {
		b.WriteString(NormaliseWorkID(w.DOI))
	} else {
		b.WriteString(w.ID)
	}
	return strings.TrimSpace(b.String())
}

// NormaliseWorkID canonicalises a user-supplied work identifier.
// Bare and "doi:" DOIs become lowercase https://doi.org/ URLs, bare
// OpenAlex ids ("W123") become https://openalex.org/ URLs, anything else
// is returned trimmed.
func NormaliseWorkID(id string) string {
	id = strings.TrimSpace(id)
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, doiPrefix):
		return doiPrefix + lower[len(doiPrefix):]
	case strings.HasPrefix(lower, "http://doi.org/"):
		return doiPrefix + lower[len("http://doi.org/"):]
	case strings.HasPrefix(lower, "http://dx.doi.org/"):
		return doiPrefix + lower[len("http://dx.doi.org/"):]
	case strings.HasPrefix(lower, "https://dx.doi.org/"):
		return doiPrefix + lower[len("https://dx.doi.org/"):]
	case strings.HasPrefix(lower, "doi:"):
		return doiPrefix + strings.TrimSpace(lower[len("doi:"):])
	case strings.HasPrefix(lower, "10."):
		return doiPrefix + lower
	case isShortWorkID(id):
		return openAlexPrefix + strings.ToUpper(id)
	}
	return id
}

// ShortID returns the last path segment of an OpenAlex URL.
func ShortID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

func isShortWorkID(id string) bool {
	if len(id) < 2 || (id[0] != 'W' && id[0] != 'w') {
		return false
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// StripHTML removes tags and decodes entities.
func StripHTML(s string) string {
	if s == "" {
		return s
	}
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
