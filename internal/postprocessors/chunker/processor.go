// Package chunker cuts document text into overlapping character windows.
package chunker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/litdb/litdb/internal/core/domain"
)

const (
	DefaultChunkSize    = domain.DefaultChunkSize
	DefaultChunkOverlap = domain.DefaultChunkOverlap
)

// Chunk ids are name-based UUIDs in this namespace, so re-embedding a
// document reproduces them.
var chunkNamespace = uuid.MustParse("8a3c2b0e-5d1f-4c67-9a0e-6f4b1d2c3e5a")

// Processor windows text by runes. Consecutive windows share overlap runes.
type Processor struct {
	chunkSize int
	overlap   int
}

type Option func(*Processor)

// WithChunkSize sets the window length. Non-positive sizes are ignored.
func WithChunkSize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithOverlap sets the shared length. Negative values are ignored.
func WithOverlap(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.overlap = n
		}
	}
}

// New applies opts over the defaults. An overlap that would stop the
// window from advancing is cut to a quarter of the window.
func New(opts ...Option) *Processor {
	p := &Processor{chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(p)
	}
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	return p
}

func (p *Processor) Name() string { return "chunker" }

// Split returns the windows over text; the last one may be short. Empty
// text gives one empty window, so every document embeds.
func (p *Processor) Split(text string) []string {
	runes := []rune(text)
	stride := p.chunkSize - p.overlap
	var out []string
	for start := 0; ; start += stride {
		end := min(start+p.chunkSize, len(runes))
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			return out
		}
	}
}

// Process replaces any incoming chunks with the windows of doc.Text.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	windows := p.Split(doc.Text)
	chunks := make([]domain.Chunk, len(windows))
	for i, w := range windows {
		name := fmt.Sprintf("%s#%d", doc.SourceID, i)
		chunks[i] = domain.Chunk{
			ID:         uuid.NewSHA1(chunkNamespace, []byte(name)).String(),
			DocumentID: doc.SourceID,
			Content:    w,
			Position:   i,
		}
	}
	return chunks, nil
}
