package render

import (
	"log/slog"
	"strings"

	"github.com/talentfold/resume-formatter/internal/entity"
)

const missingPlaceholder = "N/A"

// Binder merges an extracted record into a template and renders the target
// DOCX. Binding is pure: the same record and template always yield identical
// bytes, and the input record is never mutated.
type Binder struct {
	logger *slog.Logger
}

func NewBinder(logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Binder{logger: logger}
}

// Bind renders the record into the template's document structure. Missing
// name, email or phone render as a placeholder; other empty sections are
// skipped entirely.
func (b *Binder) Bind(rec entity.ExtractedRecord, tpl entity.Template) ([]byte, error) {
	var paras []paragraph

	name := orPlaceholder(rec.ContactInfo.Name)
	paras = append(paras, paragraph{text: name, style: "title"})
	if rec.ContactInfo.Title != "" {
		paras = append(paras, paragraph{text: rec.ContactInfo.Title})
	}
	contact := contactLine(rec.ContactInfo)
	paras = append(paras, paragraph{text: contact})
	if rec.ContactInfo.Address != "" {
		paras = append(paras, paragraph{text: rec.ContactInfo.Address})
	}

	for _, sec := range tpl.Sections {
		secParas := b.bindSection(rec, sec)
		if len(secParas) == 0 {
			continue
		}
		paras = append(paras, paragraph{text: sec.Title, style: "heading1"})
		paras = append(paras, secParas...)
	}

	out, err := writeDocx(paras)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("render.bind.ok",
		"template", tpl.ID,
		"paragraphs", len(paras),
		"bytes", len(out),
	)
	return out, nil
}

func (b *Binder) bindSection(rec entity.ExtractedRecord, sec entity.TemplateSection) []paragraph {
	switch sec.Field {
	case "summary":
		if rec.Summary == "" {
			return nil
		}
		if sec.Bullets {
			var out []paragraph
			for _, s := range bulletize(rec.Summary) {
				out = append(out, paragraph{text: s, bullet: true})
			}
			return out
		}
		return []paragraph{{text: rec.Summary}}

	case "experience":
		var out []paragraph
		for _, exp := range rec.Experience {
			head := joinNonEmpty(" | ", exp.Title, exp.Company, exp.Location)
			if head != "" {
				out = append(out, paragraph{text: head, style: "heading2"})
			}
			if dates := dateRange(exp); dates != "" {
				out = append(out, paragraph{text: dates, bold: true})
			}
			for _, line := range strings.Split(exp.Description, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					out = append(out, paragraph{text: line, bullet: true})
				}
			}
		}
		return out

	case "education":
		var out []paragraph
		for _, edu := range rec.Education {
			head := joinNonEmpty(", ", edu.Degree, edu.Institution, edu.Location)
			if head == "" {
				continue
			}
			out = append(out, paragraph{text: head, style: "heading2"})
			detail := joinNonEmpty(" | ", edu.GraduationDate, gpaLine(edu.GPA), edu.Honors)
			if detail != "" {
				out = append(out, paragraph{text: detail})
			}
		}
		return out

	case "skills":
		if len(rec.Skills) == 0 {
			return nil
		}
		if sec.Bullets {
			var out []paragraph
			for _, s := range rec.Skills {
				out = append(out, paragraph{text: s, bullet: true})
			}
			return out
		}
		return []paragraph{{text: strings.Join(rec.Skills, ", ")}}

	case "certifications":
		var out []paragraph
		for _, c := range rec.Certifications {
			out = append(out, paragraph{text: c, bullet: sec.Bullets})
		}
		return out
	}
	return nil
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return missingPlaceholder
	}
	return s
}

func contactLine(ci entity.ContactInfo) string {
	parts := []string{
		orPlaceholder(ci.Email),
		orPlaceholder(ci.Phone),
	}
	if ci.LinkedIn != "" {
		parts = append(parts, ci.LinkedIn)
	}
	if ci.Website != "" {
		parts = append(parts, ci.Website)
	}
	return strings.Join(parts, " | ")
}

func dateRange(exp entity.Experience) string {
	end := exp.EndDate
	if exp.IsCurrent {
		end = "Present"
	}
	switch {
	case exp.StartDate != "" && end != "":
		return exp.StartDate + " - " + end
	case exp.StartDate != "":
		return exp.StartDate
	case end != "":
		return end
	}
	return ""
}

func gpaLine(gpa string) string {
	if gpa == "" {
		return ""
	}
	return "GPA: " + gpa
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// bulletize splits a summary paragraph into sentence-sized bullet lines.
// Splits happen on sentence boundaries only; abbreviations with no following
// uppercase start stay intact.
func bulletize(summary string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(summary)
	for i, r := range runes {
		cur.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// boundary only when followed by a space and an uppercase letter
		if i+2 < len(runes) && runes[i+1] == ' ' && isUpper(runes[i+2]) {
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
