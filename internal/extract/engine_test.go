package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfold/resume-formatter/internal/normalize"
)

const sampleResume = `Jane Doe
Senior Software Engineer
jane.doe@example.com
(555) 123-4567
linkedin.com/in/janedoe

SUMMARY
Seasoned backend engineer with nine years building distributed systems.
Focused on reliability and developer tooling.

EXPERIENCE
Senior Software Engineer | Initech
01/2020 - Present
- Led migration of the billing platform to event sourcing
- Cut p99 latency by 40%

Software Engineer | Globex Corp
06/2016 - 12/2019
- Built the ingestion pipeline for partner feeds

EDUCATION
Bachelor of Science in Computer Science, State University
2016

SKILLS
Go, Python, PostgreSQL, Kafka, Docker, Kubernetes

CERTIFICATIONS
AWS Certified Solutions Architect
`

func TestExtractFullResume(t *testing.T) {
	eng := NewEngine(nil)
	res, err := eng.Extract(normalize.Document{Text: sampleResume})
	require.NoError(t, err)

	rec := res.Record
	assert.Equal(t, "Jane Doe", rec.ContactInfo.Name)
	assert.Equal(t, "jane.doe@example.com", rec.ContactInfo.Email)
	assert.Equal(t, "5551234567", rec.ContactInfo.Phone)
	assert.Equal(t, "linkedin.com/in/janedoe", rec.ContactInfo.LinkedIn)
	assert.Contains(t, rec.ContactInfo.Title, "Engineer")

	assert.Contains(t, rec.Summary, "distributed systems")

	require.Len(t, rec.Experience, 2)
	assert.Equal(t, "Senior Software Engineer", rec.Experience[0].Title)
	assert.Equal(t, "Initech", rec.Experience[0].Company)
	assert.True(t, rec.Experience[0].IsCurrent)
	assert.Equal(t, "01/2020", rec.Experience[0].StartDate)
	assert.Contains(t, rec.Experience[0].Description, "event sourcing")
	assert.Equal(t, "Globex Corp", rec.Experience[1].Company)
	assert.False(t, rec.Experience[1].IsCurrent)
	assert.Equal(t, "12/2019", rec.Experience[1].EndDate)

	require.Len(t, rec.Education, 1)
	assert.Contains(t, rec.Education[0].Degree, "Bachelor of Science")
	assert.Equal(t, "State University", rec.Education[0].Institution)
	assert.Equal(t, "2016", rec.Education[0].GraduationDate)

	assert.Equal(t, []string{"Go", "Python", "PostgreSQL", "Kafka", "Docker", "Kubernetes"}, rec.Skills)
	assert.Equal(t, []string{"AWS Certified Solutions Architect"}, rec.Certifications)

	score := Score(res.Contributions)
	assert.Greater(t, score, 0.8)
	assert.LessOrEqual(t, score, 1.0)
}

func TestExtractInlineSkillsLabel(t *testing.T) {
	eng := NewEngine(nil)
	res, err := eng.Extract(normalize.Document{Text: "Jane Doe\njane@x.com\nSkills: Python, SQL"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", res.Record.ContactInfo.Name)
	assert.Equal(t, "jane@x.com", res.Record.ContactInfo.Email)
	assert.Equal(t, []string{"Python", "SQL"}, res.Record.Skills)
	score := Score(res.Contributions)
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)
}

func TestExtractSparseTextNeverFails(t *testing.T) {
	eng := NewEngine(nil)
	res, err := eng.Extract(normalize.Document{Text: "just a note with nothing in it"})
	require.NoError(t, err)
	assert.True(t, res.Record.ContactInfo.Email == "")
	assert.Empty(t, res.Record.Experience)
	assert.Less(t, Score(res.Contributions), 0.3)
}

func TestExtractGarbledInputFails(t *testing.T) {
	eng := NewEngine(nil)
	garbage := strings.Repeat("\x00\x01\x02a", 50)
	_, err := eng.Extract(normalize.Document{Text: garbage})
	require.Error(t, err)
}

func TestExtractDeterministic(t *testing.T) {
	eng := NewEngine(nil)
	a, err := eng.Extract(normalize.Document{Text: sampleResume})
	require.NoError(t, err)
	b, err := eng.Extract(normalize.Document{Text: sampleResume})
	require.NoError(t, err)
	assert.Equal(t, a.Record, b.Record)
	assert.Equal(t, Score(a.Contributions), Score(b.Contributions))
}

func TestSkillsDedupeAndCap(t *testing.T) {
	text := "SKILLS\nGo, go, GO, Python\n" + strings.Repeat("Skill", 1) + "A"
	var tokens []string
	for i := 0; i < 30; i++ {
		tokens = append(tokens, "Tool"+string(rune('A'+i)))
	}
	text = "SKILLS\nGo, go, GO, Python, " + strings.Join(tokens, ", ")

	eng := NewEngine(nil)
	res, err := eng.Extract(normalize.Document{Text: text})
	require.NoError(t, err)

	skills := res.Record.Skills
	assert.Len(t, skills, 20)
	assert.Equal(t, "Go", skills[0])
	assert.Equal(t, "Python", skills[1])
	for i, s := range skills {
		for j, other := range skills {
			if i != j {
				assert.NotEqual(t, strings.ToLower(s), strings.ToLower(other))
			}
		}
	}
}

func TestExperienceCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("EXPERIENCE\n")
	for i := 0; i < 8; i++ {
		b.WriteString("Engineer | Company")
		b.WriteByte(byte('A' + i))
		b.WriteString("\n2010 - 2012\n- did things\n\n")
	}
	eng := NewEngine(nil)
	res, err := eng.Extract(normalize.Document{Text: b.String()})
	require.NoError(t, err)
	assert.Len(t, res.Record.Experience, 5)
	assert.Equal(t, "CompanyA", res.Record.Experience[0].Company)
}

func TestSegmentHeadingVariants(t *testing.T) {
	cases := map[string]string{
		"Professional Summary":      "summary",
		"WORK HISTORY":              "experience",
		"Technical Skills":          "skills",
		"Academic Background":       "education",
		"Licenses & Certifications": "certifications",
	}
	for heading, want := range cases {
		sec, ok := classifyHeading(heading)
		require.True(t, ok, heading)
		assert.Equal(t, want, string(sec), heading)
	}
	_, ok := classifyHeading("Random Paragraph Line")
	assert.False(t, ok)
}
