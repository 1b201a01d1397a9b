package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/normalize"
)

// Result is one extraction pass: the structured record plus the per-field
// confidence contributions the scorer aggregates.
type Result struct {
	Record        entity.ExtractedRecord
	Contributions []Contribution
}

// Engine segments canonical text into resume sections and parses each section
// into typed fields. Sparse text never fails: a resume with no recognizable
// structure still yields a record with confidence near zero.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Extract parses the normalized document. Only non-text/garbled input reports
// common.ErrExtractionFailure; missing fields are left absent rather than
// guessed.
func (e *Engine) Extract(doc normalize.Document) (Result, error) {
	if garbled(doc.Text) {
		return Result{}, fmt.Errorf("%w: input is not usable text", common.ErrExtractionFailure)
	}

	lines := doc.Lines()
	sections := segment(lines, doc.Headings)

	var res Result
	res.Record.RawText = doc.Text
	res.Record.Language = doc.Language

	res.Record.ContactInfo = e.extractContact(lines, sections, &res.Contributions)
	res.Record.Summary = extractSummary(sections, &res.Contributions)
	res.Record.Experience = extractExperience(sections, &res.Contributions)
	res.Record.Education = extractEducation(sections, &res.Contributions)
	res.Record.Skills = extractSkills(sections, &res.Contributions)
	res.Record.Certifications = extractCertifications(sections)

	e.logger.Debug("extract.ok",
		"name", res.Record.ContactInfo.Name != "",
		"email", res.Record.ContactInfo.Email != "",
		"experience", len(res.Record.Experience),
		"education", len(res.Record.Education),
		"skills", len(res.Record.Skills),
	)
	return res, nil
}

// garbled reports whether the text is dominated by control or replacement
// runes. Sparse-but-clean text is never garbled.
func garbled(text string) bool {
	if text == "" {
		return false
	}
	var bad, total int
	for _, r := range text {
		total++
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			bad++
		}
	}
	if total == 0 {
		return false
	}
	return float64(bad)/float64(total) > 0.3
}

func nonEmptyLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return out
}
