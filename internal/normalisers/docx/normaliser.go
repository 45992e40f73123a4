// Package docx extracts text and core properties from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise joins the document paragraphs with newlines. Title, creator
// and creation year come from the core properties when present.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	zr, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", raw.URI, domain.ErrInvalidInput)
	}

	var (
		text string
		info domain.FileInfo
	)
	for _, f := range zr.File {
		switch f.Name {
		case documentPart:
			text, err = readPart(f, paragraphs)
		case corePart:
			info, err = readPart(f, coreProperties)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", f.Name, raw.URI, domain.ErrInvalidInput)
		}
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourceID: raw.URI,
			Text:     text,
			Metadata: raw.DocumentMetadata("docx", info),
		},
	}, nil
}

func readPart[T any](f *zip.File, decode func(*xml.Decoder) (T, error)) (T, error) {
	rc, err := f.Open()
	if err != nil {
		var zero T
		return zero, err
	}
	defer rc.Close()
	return decode(xml.NewDecoder(rc))
}

// paragraphs streams word/document.xml. Runs of a paragraph are
// concatenated; w:tab and w:br become a tab and a newline.
func paragraphs(d *xml.Decoder) (string, error) {
	var (
		out    []string
		para   strings.Builder
		inText bool
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(para.String()); s != "" {
					out = append(out, s)
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return strings.Join(out, "\n"), nil
}

// coreProperties reads dc:title, dc:creator and dcterms:created.
func coreProperties(d *xml.Decoder) (domain.FileInfo, error) {
	var props struct {
		Title   string `xml:"title"`
		Creator string `xml:"creator"`
		Created string `xml:"created"`
	}
	if err := d.Decode(&props); err != nil {
		return domain.FileInfo{}, err
	}

	info := domain.FileInfo{Title: strings.TrimSpace(props.Title)}
	for _, name := range strings.Split(props.Creator, ";") {
		if name = strings.TrimSpace(name); name != "" {
			info.Authors = append(info.Authors, name)
		}
	}
	if len(props.Created) >= 4 {
		fmt.Sscanf(props.Created[:4], "%d", &info.Year) //nolint:errcheck // a bad date leaves the year unset
	}
	return info, nil
}
