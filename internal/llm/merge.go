package llm

import (
	"strings"

	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/extract"
)

// Merge overlays model fields onto the rules-first draft. A model value wins
// only when non-empty; empty model fields never erase a rules result. Each
// overridden field re-anchors its confidence contribution at AnchorModel.
func Merge(res extract.Result, fields ResumeFields) extract.Result {
	rec := &res.Record

	setStr := func(dst *string, v, field string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		*dst = v
		if w := extract.FieldWeight(field); w > 0 {
			res.Contributions = extract.ReplaceContribution(res.Contributions, field, w, extract.AnchorModel)
		}
	}

	setStr(&rec.ContactInfo.Name, fields.Name, "name")
	setStr(&rec.ContactInfo.Email, fields.Email, "email")
	setStr(&rec.ContactInfo.Phone, fields.Phone, "phone")
	setStr(&rec.ContactInfo.Address, fields.Address, "")
	setStr(&rec.ContactInfo.LinkedIn, fields.LinkedIn, "")
	setStr(&rec.ContactInfo.Website, fields.Website, "")
	setStr(&rec.ContactInfo.Title, fields.Title, "")

	summary := strings.TrimSpace(fields.Summary)
	if summary == "" && len(fields.SummaryBullets) > 0 {
		summary = strings.Join(fields.SummaryBullets, " ")
	}
	setStr(&rec.Summary, summary, "summary")

	if len(fields.Experience) > 0 {
		rec.Experience = rec.Experience[:0]
		for _, j := range fields.Experience {
			rec.Experience = append(rec.Experience, entity.Experience{
				Title:       strings.TrimSpace(j.Title),
				Company:     strings.TrimSpace(j.Company),
				Location:    strings.TrimSpace(j.Location),
				StartDate:   strings.TrimSpace(j.StartDate),
				EndDate:     strings.TrimSpace(j.EndDate),
				Description: strings.TrimSpace(j.Description),
				IsCurrent:   j.IsCurrent,
			})
		}
		res.Contributions = extract.ReplaceContribution(
			res.Contributions, "experience", extract.FieldWeight("experience"), extract.AnchorModel)
	}

	if len(fields.Education) > 0 {
		rec.Education = rec.Education[:0]
		for _, d := range fields.Education {
			rec.Education = append(rec.Education, entity.Education{
				Degree:         strings.TrimSpace(d.Degree),
				Institution:    strings.TrimSpace(d.Institution),
				Location:       strings.TrimSpace(d.Location),
				GraduationDate: strings.TrimSpace(d.GraduationDate),
				GPA:            strings.TrimSpace(d.GPA),
				Honors:         strings.TrimSpace(d.Honors),
			})
		}
		res.Contributions = extract.ReplaceContribution(
			res.Contributions, "education", extract.FieldWeight("education"), extract.AnchorModel)
	}

	if len(fields.Skills) > 0 {
		rec.Skills = dedupeStrings(fields.Skills)
		res.Contributions = extract.ReplaceContribution(
			res.Contributions, "skills", extract.FieldWeight("skills"), extract.AnchorModel)
	}
	if len(fields.Certifications) > 0 {
		rec.Certifications = dedupeStrings(fields.Certifications)
	}

	return res
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
