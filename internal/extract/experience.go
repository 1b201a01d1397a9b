package extract

import (
	"regexp"
	"strings"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/entity"
)

const maxExperienceEntries = 5

var (
	// "01/2020 - 03/2023", "Jan 2020 - Present", "2018-2021"
	reDateRange = regexp.MustCompile(`(?i)((?:\d{1,2}/\d{4})|(?:[A-Z][a-z]{2,8}\.?\s+\d{4})|(?:\d{4}))\s*(?:-|–|—|to)\s*((?:\d{1,2}/\d{4})|(?:[A-Z][a-z]{2,8}\.?\s+\d{4})|(?:\d{4})|(?:present|current|now))`)
	reAtCompany = regexp.MustCompile(`(?i)^(.{2,60}?)\s+(?:at|@|\|)\s+(.{2,60})$`)
	reYear      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// extractExperience splits the experience section into entries. A new entry
// starts at a line carrying a date range, or after a blank-line boundary when
// no dates are present. Entries keep document order, capped at
// maxExperienceEntries.
func extractExperience(secs segmented, contribs *[]Contribution) []entity.Experience {
	raw := secs.lines(constants.SectionExperience)
	if len(raw) == 0 {
		return nil
	}

	blocks := splitExperienceBlocks(raw)
	var out []entity.Experience
	for _, block := range blocks {
		exp := parseExperienceBlock(block)
		if exp.Title == "" && exp.Company == "" && exp.StartDate == "" {
			continue
		}
		out = append(out, exp)
		if len(out) == maxExperienceEntries {
			break
		}
	}

	if len(out) > 0 {
		*contribs = append(*contribs, Contribution{Field: "experience", Weight: weightExperienceFirst, Anchor: AnchorStrong})
	}
	if len(out) > 1 {
		*contribs = append(*contribs, Contribution{Field: "experience_depth", Weight: weightExperienceMore, Anchor: AnchorStrong})
	}
	return out
}

func splitExperienceBlocks(lines []string) [][]string {
	anyDates := false
	for _, l := range lines {
		if reDateRange.MatchString(l) && !isBulletLine(l) {
			anyDates = true
			break
		}
	}

	var blocks [][]string
	var cur []string
	curHasDate := false
	flush := func() {
		if len(cur) > 0 {
			blocks = append(blocks, cur)
			cur = nil
			curHasDate = false
		}
	}
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			// a blank ends a block once the block is dated; a dateless header
			// stays attached to the lines that follow it
			if curHasDate || !anyDates {
				flush()
			}
			continue
		}
		if reDateRange.MatchString(trimmed) && !isBulletLine(trimmed) {
			if curHasDate {
				flush()
			}
			curHasDate = true
		}
		cur = append(cur, trimmed)
	}
	flush()
	return blocks
}

func parseExperienceBlock(block []string) entity.Experience {
	var exp entity.Experience
	var descLines []string

	for i, line := range block {
		if m := reDateRange.FindStringSubmatch(line); m != nil && exp.StartDate == "" {
			exp.StartDate = strings.TrimSpace(m[1])
			end := strings.TrimSpace(m[2])
			if isPresentWord(end) {
				exp.IsCurrent = true
				exp.EndDate = "Present"
			} else {
				exp.EndDate = end
			}
			// the rest of a date line is often "Title | Company" or a location
			rest := strings.TrimSpace(strings.Trim(reDateRange.ReplaceAllString(line, ""), " -|,•"))
			if rest != "" && exp.Title == "" {
				fillTitleCompany(&exp, rest)
			}
			continue
		}
		if isBulletLine(line) {
			descLines = append(descLines, strings.TrimLeft(line, "•·●▪-* \t"))
			continue
		}
		if i < 3 && (exp.Title == "" || exp.Company == "") {
			fillTitleCompany(&exp, line)
			continue
		}
		descLines = append(descLines, line)
	}

	exp.Description = strings.Join(descLines, "\n")
	return exp
}

// fillTitleCompany assigns a header line to the first empty slot among title
// and company, honoring "Title at Company" and "Title | Company" forms.
func fillTitleCompany(exp *entity.Experience, line string) {
	if m := reAtCompany.FindStringSubmatch(line); m != nil {
		left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if exp.Title == "" {
			exp.Title = left
		}
		if exp.Company == "" {
			exp.Company = right
		}
		return
	}
	if parts := strings.Split(line, ","); len(parts) >= 2 && exp.Company == "" && exp.Title != "" {
		exp.Company = strings.TrimSpace(parts[0])
		exp.Location = strings.TrimSpace(strings.Join(parts[1:], ","))
		return
	}
	switch {
	case exp.Title == "":
		exp.Title = line
	case exp.Company == "":
		exp.Company = line
	case exp.Location == "":
		exp.Location = line
	}
}

func isBulletLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '-', '*':
		return len(trimmed) > 1 && trimmed[1] == ' '
	}
	r := []rune(trimmed)[0]
	return r == '•' || r == '·' || r == '●' || r == '▪'
}

func isPresentWord(s string) bool {
	switch strings.ToLower(s) {
	case "present", "current", "now":
		return true
	}
	return false
}
