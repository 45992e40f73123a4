package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
)

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML, coreXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}
	if coreXML != "" {
		core, _ := w.Create("docProps/core.xml")
		core.Write([]byte(coreXML))
	}

	w.Close()
	return buf.Bytes()
}

const twoParagraphs = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestNormaliser_Basics(t *testing.T) {
	n := New()
	var _ driven.Normaliser = n
	assert.Equal(t, []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormalise_Success(t *testing.T) {
	core := `<?xml version="1.0"?><cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Grant Proposal</dc:title></cp:coreProperties>`
	raw := &domain.RawDocument{
		URI:      "/docs/proposal.docx",
		MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Content:  createTestDOCX(twoParagraphs, core),
		Metadata: map[string]any{"size": int64(10)},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "/docs/proposal.docx", doc.SourceID)
	assert.Equal(t, "First paragraph\nSecond paragraph", doc.Text)
	assert.Equal(t, "Grant Proposal", doc.Metadata["title"])
	assert.Equal(t, "docx", doc.Metadata["format"])
	assert.Equal(t, int64(10), doc.Metadata["size"])
}

func TestNormalise_CoreProperties(t *testing.T) {
	core := `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title>Lab Notebook</dc:title>
<dc:creator>Ada Lovelace; Charles Babbage</dc:creator>
<dcterms:created>2021-03-04T10:00:00Z</dcterms:created>
</cp:coreProperties>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/notebook.docx",
		Content: createTestDOCX(twoParagraphs, core),
	})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "Lab Notebook", doc.Title())
	assert.Equal(t, []string{"Ada Lovelace", "Charles Babbage"}, doc.Authors())
	assert.Equal(t, 2021, doc.Year())
	assert.Equal(t, "Lab Notebook. Ada Lovelace, Charles Babbage (2021).", doc.Citation())
}

func TestNormalise_TabsAndBreaks(t *testing.T) {
	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t></w:r></w:p>
<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
<w:p></w:p>
</w:body></w:document>`

	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/table.docx",
		Content: createTestDOCX(body, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Name\tValue\nLine one\nLine two", result.Document.Text)
}

func TestNormalise_TitleFallbackToFilename(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/my_draft-v2.docx",
		Content: createTestDOCX(twoParagraphs, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, "my draft v2", result.Document.Metadata["title"])
}

func TestNormalise_Errors(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/broken.docx",
		Content: []byte("not a zip"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/truncated.docx",
		Content: createTestDOCX("<w:document><w:body><w:p>", ""),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_EmptyDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "/docs/empty.docx",
		Content: createTestDOCX("", ""),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Text)
}
