package extract

import (
	"regexp"
	"strings"

	"github.com/talentfold/resume-formatter/constants"
)

// Heading keyword patterns per section, mirroring the heading vocabulary
// resumes actually use. Order matters: the first pattern set that matches a
// heading line claims it.
var sectionPatterns = []struct {
	section  constants.Section
	patterns []*regexp.Regexp
}{
	{constants.SectionSummary, compileAll(
		`(?i)^(professional\s+|career\s+|profile\s+)?summary$`,
		`(?i)^objective$`,
		`(?i)^profile$`,
		`(?i)^about\s+me$`,
	)},
	{constants.SectionExperience, compileAll(
		`(?i)^(work\s+|professional\s+|relevant\s+work\s+|project\s+)?experience$`,
		`(?i)^(employment|career|work)\s+history$`,
		`(?i)^professional\s+background$`,
	)},
	{constants.SectionEducation, compileAll(
		`(?i)^education$`,
		`(?i)^academic\s+background$`,
		`(?i)^qualifications$`,
	)},
	{constants.SectionSkills, compileAll(
		`(?i)^(technical\s+)?skills$`,
		`(?i)^core\s+competencies$`,
		`(?i)^technologies$`,
		`(?i)^expertise$`,
		`(?i)^tools\s+(and|&)\s+technologies$`,
	)},
	{constants.SectionCertifications, compileAll(
		`(?i)^certifications?$`,
		`(?i)^licenses\s+(and|&)\s+certifications?$`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// segmented holds the line span of each recognized section plus the leading
// lines before the first heading (the implicit contact block).
type segmented struct {
	lead     []string
	sections map[constants.Section][]string
}

func (s segmented) lines(sec constants.Section) []string {
	return s.sections[sec]
}

// classifyHeading matches a trimmed heading line against the section
// vocabulary, returning SectionOther for heading-shaped lines that are not a
// recognized section.
func classifyHeading(line string) (constants.Section, bool) {
	sec, _, ok := splitHeading(line)
	return sec, ok
}

// splitHeading recognizes a section heading line, including inline labels like
// "Skills: Python, SQL" where content follows the keyword on the same line.
// rest carries that trailing content so it still lands in the section body.
func splitHeading(line string) (constants.Section, string, bool) {
	trimmed := strings.TrimSpace(line)
	if sec, ok := matchSection(strings.TrimRight(trimmed, ":")); ok {
		return sec, "", true
	}
	if idx := strings.Index(trimmed, ":"); idx > 0 {
		if sec, ok := matchSection(trimmed[:idx]); ok {
			return sec, strings.TrimSpace(trimmed[idx+1:]), true
		}
	}
	return constants.SectionOther, "", false
}

func matchSection(s string) (constants.Section, bool) {
	s = strings.TrimSpace(s)
	for _, sp := range sectionPatterns {
		for _, re := range sp.patterns {
			if re.MatchString(s) {
				return sp.section, true
			}
		}
	}
	return constants.SectionOther, false
}

// segment splits lines into sections. Heading candidates come from the
// normalizer's layout hints plus any line matching the section vocabulary
// directly, so documents without typographic headings still segment.
func segment(lines []string, headingHints []int) segmented {
	hintSet := make(map[int]struct{}, len(headingHints))
	for _, h := range headingHints {
		hintSet[h] = struct{}{}
	}

	type boundary struct {
		line    int
		section constants.Section
		rest    string // inline content after a "Skills: ..." style label
	}
	var boundaries []boundary
	claimed := make(map[constants.Section]bool)

	for i, line := range lines {
		sec, rest, ok := splitHeading(line)
		if !ok {
			if _, hinted := hintSet[i]; !hinted {
				continue
			}
			// heading-shaped but unrecognized: still a boundary so sections
			// do not bleed into unrelated content
			sec = constants.SectionOther
		}
		if sec != constants.SectionOther && claimed[sec] {
			continue
		}
		claimed[sec] = true
		boundaries = append(boundaries, boundary{line: i, section: sec, rest: rest})
	}

	out := segmented{sections: make(map[constants.Section][]string)}
	if len(boundaries) == 0 {
		out.lead = lines
		return out
	}

	out.lead = lines[:boundaries[0].line]
	for bi, b := range boundaries {
		end := len(lines)
		if bi+1 < len(boundaries) {
			end = boundaries[bi+1].line
		}
		if b.section == constants.SectionOther {
			continue
		}
		// content starts after the heading line, except for inline labels
		// whose remainder belongs to the section
		content := lines[b.line+1 : end]
		if b.rest != "" {
			content = append([]string{b.rest}, content...)
		}
		out.sections[b.section] = content
	}
	return out
}

// extractSummary joins the summary section into one paragraph.
func extractSummary(secs segmented, contribs *[]Contribution) string {
	content := nonEmptyLines(secs.lines(constants.SectionSummary))
	if len(content) == 0 {
		return ""
	}
	if len(content) > 15 {
		content = content[:15]
	}
	for i, l := range content {
		content[i] = strings.TrimLeft(l, "•·●▪-* \t")
	}
	summary := strings.Join(content, " ")
	*contribs = append(*contribs, Contribution{Field: "summary", Weight: weightSummary, Anchor: AnchorStrong})
	return summary
}

// extractCertifications lists certification entries line by line, splitting
// single comma-joined lines.
func extractCertifications(secs segmented) []string {
	content := nonEmptyLines(secs.lines(constants.SectionCertifications))
	if len(content) == 0 {
		return nil
	}
	var out []string
	for _, line := range content {
		line = strings.TrimLeft(line, "•·●▪-* \t")
		parts := []string{line}
		if !strings.Contains(line, "(") && strings.Count(line, ",") >= 2 {
			parts = strings.Split(line, ",")
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
