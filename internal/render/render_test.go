package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfold/resume-formatter/internal/entity"
)

func sampleRecord() entity.ExtractedRecord {
	return entity.ExtractedRecord{
		ContactInfo: entity.ContactInfo{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			Phone: "5551234567",
			Title: "Senior Software Engineer",
		},
		Summary: "Seasoned backend engineer. Focused on reliability.",
		Experience: []entity.Experience{
			{Title: "Engineer", Company: "Initech", StartDate: "01/2020", IsCurrent: true,
				Description: "Led migration\nCut latency"},
		},
		Education: []entity.Education{
			{Degree: "B.Sc. Computer Science", Institution: "State University", GraduationDate: "2016"},
		},
		Skills:         []string{"Go", "Python"},
		Certifications: []string{"AWS SA"},
	}
}

func docText(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestRegistryBuiltinsAndFallback(t *testing.T) {
	reg := NewRegistry()

	ids := make([]string, 0)
	for _, tpl := range reg.List() {
		ids = append(ids, tpl.ID)
	}
	assert.Equal(t, []string{"default", "ezest-updated", "ezest-updated-bullets"}, ids)

	tpl, fell := reg.Resolve("ezest-updated")
	assert.False(t, fell)
	assert.Equal(t, "ezest-updated", tpl.ID)

	tpl, fell = reg.Resolve("no-such-template")
	assert.True(t, fell)
	assert.Equal(t, "ezest-updated-bullets", tpl.ID)

	_, err := reg.Get("missing")
	require.Error(t, err)
}

func TestRegistryPreview(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Preview("default")
	require.NoError(t, err)
	assert.Equal(t, "default", p.TemplateID)
	assert.Equal(t, "name", p.Header["slot"])
	require.NotEmpty(t, p.Sections)
	assert.Equal(t, "summary", p.Sections[0].Field)

	_, err = reg.Preview("missing")
	require.Error(t, err)
}

func TestBindDeterministic(t *testing.T) {
	reg := NewRegistry()
	tpl, _ := reg.Resolve(DefaultTemplateID)
	b := NewBinder(nil)

	first, err := b.Bind(sampleRecord(), tpl)
	require.NoError(t, err)
	second, err := b.Bind(sampleRecord(), tpl)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBindContentAndPlaceholders(t *testing.T) {
	reg := NewRegistry()
	b := NewBinder(nil)

	tpl, err := reg.Get("default")
	require.NoError(t, err)

	out, err := b.Bind(sampleRecord(), tpl)
	require.NoError(t, err)
	text := docText(t, out)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Initech")
	assert.Contains(t, text, "01/2020 - Present")
	assert.Contains(t, text, "Go, Python")
	assert.NotContains(t, text, "N/A")

	sparse := entity.ExtractedRecord{Summary: "Short summary."}
	out, err = b.Bind(sparse, tpl)
	require.NoError(t, err)
	text = docText(t, out)
	assert.Contains(t, text, "N/A")
	assert.NotContains(t, text, "Work Experience")
}

func TestBindBulletTemplateSplitsSummary(t *testing.T) {
	reg := NewRegistry()
	b := NewBinder(nil)
	tpl, err := reg.Get("ezest-updated-bullets")
	require.NoError(t, err)

	out, err := b.Bind(sampleRecord(), tpl)
	require.NoError(t, err)
	text := docText(t, out)
	assert.Contains(t, text, "• Seasoned backend engineer.")
	assert.Contains(t, text, "• Focused on reliability.")
	assert.Contains(t, text, "• Go")
}

func TestBulletize(t *testing.T) {
	got := bulletize("Built systems at B.Sc. level. Leads teams! Ships often.")
	assert.Equal(t, []string{"Built systems at B.Sc. level.", "Leads teams!", "Ships often."}, got)

	assert.Equal(t, []string{"One sentence only"}, bulletize("One sentence only"))
}

func TestBindEscapesMarkup(t *testing.T) {
	reg := NewRegistry()
	b := NewBinder(nil)
	tpl, _ := reg.Resolve("default")

	rec := sampleRecord()
	rec.ContactInfo.Name = `Jane <Doe> & "Co"`
	out, err := b.Bind(rec, tpl)
	require.NoError(t, err)
	text := docText(t, out)
	assert.Contains(t, text, "Jane &lt;Doe&gt; &amp;")
	assert.False(t, strings.Contains(text, "<Doe>"))
}
