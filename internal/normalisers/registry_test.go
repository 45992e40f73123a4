package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

type stubNormaliser struct {
	mimes    []string
	priority int
	text     string
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{SourceID: raw.URI, Text: s.text}}, nil
}

func TestRegistry_PrefersHigherPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 5, text: "fallback"})
	r.Register(&stubNormaliser{mimes: []string{"text/plain"}, priority: 60, text: "specific"})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "/a.txt", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "specific", result.Document.Text)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Normalise(context.Background(), &domain.RawDocument{URI: "/a.png", MIMEType: "image/png"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	types := r.SupportedMIMETypes()
	for _, want := range []string{
		"text/plain", "text/markdown", "text/html", "text/x-org", "text/x-tex",
		"text/x-rst", "text/x-bibtex",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	} {
		assert.Contains(t, types, want)
	}
	assert.IsNonDecreasing(t, types)

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		URI:      "/n/readme.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Readme\n\n**bold**"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Readme\n\nbold", result.Document.Text)
}

func TestDefaultRegistry_BibtexOverPlaintext(t *testing.T) {
	result, err := DefaultRegistry().Normalise(context.Background(), &domain.RawDocument{
		URI:      "/refs/lib.bib",
		MIMEType: "text/x-bibtex",
		Content:  []byte("@article{a, doi={10.1/X}}"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://doi.org/10.1/x"}, result.Document.Metadata["dois"])
}
