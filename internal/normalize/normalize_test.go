package normalize

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
)

func TestCanonicalize(t *testing.T) {
	in := "Jane Doe\r\nEngineer\t\tBackend\r\n\r\n\r\n\r\n----------\r\nSkills:  Go,   Python   \n"
	got := Canonicalize(in)
	assert.Equal(t, "Jane Doe\nEngineer Backend\n\nSkills: Go, Python", got)
}

func TestCanonicalizeDeterministic(t *testing.T) {
	in := "A\r\nB\f\fC\t D  E\n\n\n\nF"
	assert.Equal(t, Canonicalize(in), Canonicalize(in))
	// already-canonical text is a fixed point
	once := Canonicalize(in)
	assert.Equal(t, once, Canonicalize(once))
}

func TestLayoutHints(t *testing.T) {
	lines := []string{
		"Jane Doe",
		"",
		"EXPERIENCE",
		"Senior Engineer at Initech since 2020, working on billing.",
		"• Led the migration",
		"- Cut latency",
		"Education",
	}
	headings, bullets := layoutHints(lines)
	assert.Contains(t, headings, 2)
	assert.Contains(t, headings, 6)
	assert.NotContains(t, headings, 3)
	assert.Equal(t, []int{4, 5}, bullets)
}

func TestIsHeadingLine(t *testing.T) {
	assert.True(t, isHeadingLine("WORK HISTORY"))
	assert.True(t, isHeadingLine("Technical Skills"))
	assert.False(t, isHeadingLine("This sentence ends with a period."))
	assert.False(t, isHeadingLine("a very long line that keeps going and going and going far past sixty characters"))
	assert.False(t, isHeadingLine("started with lowercase words here"))
}

func TestDetectLanguage(t *testing.T) {
	english := "Experienced software engineer with a strong background in distributed systems and cloud infrastructure."
	assert.Equal(t, "en", detectLanguage(english))
	assert.Equal(t, "", detectLanguage("short"))
}

func writeDocxFile(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

const docxBody = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
<w:p><w:r><w:t>first</w:t><w:br/><w:t>second</w:t></w:r></w:p>
<w:tbl><w:tr>
<w:tc><w:p><w:r><w:t>jane@example.com</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>555-123-4567</w:t></w:r></w:p></w:tc>
<w:tc><w:p></w:p></w:tc>
</w:tr></w:tbl>
</w:body></w:document>`

func TestNormalizeDocx(t *testing.T) {
	path := writeDocxFile(t, docxBody)
	n := NewNormalizer(Config{}, nil)

	doc, err := n.Normalize(context.Background(), path, constants.DOCX)
	require.NoError(t, err)

	assert.Equal(t, "docx-native", doc.Method)
	assert.Equal(t, 1, doc.Pages)
	lines := doc.Lines()
	assert.Equal(t, "Jane Doe", lines[0])
	assert.Equal(t, "Senior Engineer", lines[1])
	assert.Contains(t, lines, "first")
	assert.Contains(t, lines, "second")
	assert.Contains(t, doc.Text, "jane@example.com | 555-123-4567")
}

func TestNormalizeDocxDeterministic(t *testing.T) {
	path := writeDocxFile(t, docxBody)
	n := NewNormalizer(Config{}, nil)

	a, err := n.Normalize(context.Background(), path, constants.DOCX)
	require.NoError(t, err)
	b, err := n.Normalize(context.Background(), path, constants.DOCX)
	require.NoError(t, err)
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Headings, b.Headings)
}

func TestNormalizeCorruptDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	n := NewNormalizer(Config{}, nil)
	_, err := n.Normalize(context.Background(), path, constants.DOCX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnsupportedDocument))
}

func TestNormalizeUnknownFormat(t *testing.T) {
	n := NewNormalizer(Config{}, nil)
	_, err := n.Normalize(context.Background(), "whatever", constants.FileFormat("TXT"))
	assert.True(t, errors.Is(err, common.ErrUnsupportedDocument))
}

func TestParseDocumentXMLMissingBody(t *testing.T) {
	path := writeDocxFile(t, `<?xml version="1.0"?><w:document xmlns:w="x"><w:body></w:body></w:document>`)
	n := NewNormalizer(Config{}, nil)
	doc, err := n.Normalize(context.Background(), path, constants.DOCX)
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
}

type fakeRunner struct {
	stdout map[string][]byte
	err    error
}

func (f fakeRunner) Run(_ context.Context, name string, _ ...string) ([]byte, []byte, error) {
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	return f.stdout[name], nil, nil
}

func TestPdfToTextCountsPages(t *testing.T) {
	n := NewNormalizer(Config{}, nil)
	n.runner = fakeRunner{stdout: map[string][]byte{
		"pdftotext": []byte("page one\fpage two\fpage three"),
	}}

	doc, err := n.Normalize(context.Background(), "resume.pdf", constants.PDF)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Pages)
	assert.Equal(t, "pdf-text", doc.Method)
	assert.NotContains(t, doc.Text, "\f")
}

func TestDocFallsBackToCatdoc(t *testing.T) {
	n := NewNormalizer(Config{}, nil)
	n.runner = sequenceRunner{
		fails:  map[string]bool{"antiword": true},
		stdout: map[string][]byte{"catdoc": []byte("legacy resume text")},
	}

	doc, err := n.Normalize(context.Background(), "resume.doc", constants.DOC)
	require.NoError(t, err)
	assert.Equal(t, "doc-catdoc", doc.Method)
	assert.Equal(t, "legacy resume text", doc.Text)
	assert.NotEmpty(t, doc.Warnings)
}

type sequenceRunner struct {
	fails  map[string]bool
	stdout map[string][]byte
}

func (s sequenceRunner) Run(_ context.Context, name string, _ ...string) ([]byte, []byte, error) {
	if s.fails[name] {
		return nil, []byte("fail"), errors.New("exit status 1")
	}
	return s.stdout[name], nil, nil
}
