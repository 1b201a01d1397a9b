package extract

import (
	"regexp"
	"strings"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/entity"
)

var (
	reDegree = regexp.MustCompile(`(?i)\b(bachelor|master|ph\.?d|doctorate|associate|b\.?sc?|m\.?sc?|b\.?a|m\.?a|b\.?eng?|m\.?eng?|m\.?b\.?a|b\.?tech|m\.?tech|diploma)\b`)
	reGPA    = regexp.MustCompile(`(?i)\bgpa[:\s]+([0-4](?:\.\d{1,2})?)`)
)

var institutionWords = []string{
	"university", "college", "institute", "school", "academy", "polytechnic",
}

// extractEducation parses the education section into degree entries. A new
// entry starts at a degree keyword line; loose institution or year lines
// attach to the current entry.
func extractEducation(secs segmented, contribs *[]Contribution) []entity.Education {
	raw := nonEmptyLines(secs.lines(constants.SectionEducation))
	if len(raw) == 0 {
		return nil
	}

	var out []entity.Education
	var cur *entity.Education
	start := func() *entity.Education {
		out = append(out, entity.Education{})
		return &out[len(out)-1]
	}

	for _, line := range raw {
		line = strings.TrimLeft(line, "•·●▪-* \t")
		switch {
		case reDegree.MatchString(line):
			cur = start()
			if inst, rest := splitInstitution(line); inst != "" {
				cur.Institution = inst
				cur.Degree = rest
			} else {
				cur.Degree = line
			}
		case isInstitutionLine(line):
			if cur == nil || cur.Institution != "" {
				cur = start()
			}
			cur.Institution = line
		case cur != nil:
			if m := reGPA.FindStringSubmatch(line); m != nil && cur.GPA == "" {
				cur.GPA = m[1]
			}
			if y := reYear.FindString(line); y != "" && cur.GraduationDate == "" {
				cur.GraduationDate = y
			}
			if cur.GPA == "" && cur.GraduationDate == "" && cur.Honors == "" && looksLikeHonors(line) {
				cur.Honors = line
			}
		}
		if cur != nil && cur.GraduationDate == "" {
			if y := latestYear(line); y != "" {
				cur.GraduationDate = y
			}
		}
	}

	// drop shells that picked up nothing identifying
	kept := out[:0]
	for _, e := range out {
		if e.Degree != "" || e.Institution != "" {
			kept = append(kept, e)
		}
	}
	out = kept

	if len(out) > 0 {
		*contribs = append(*contribs, Contribution{Field: "education", Weight: weightEducation, Anchor: AnchorStrong})
	}
	return out
}

// splitInstitution peels an institution off a combined "Degree, University"
// or "Degree - University" line.
func splitInstitution(line string) (inst, rest string) {
	for _, sep := range []string{",", " - ", " – ", " | "} {
		parts := strings.SplitN(line, sep, 2)
		if len(parts) != 2 {
			continue
		}
		left, right := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if isInstitutionLine(right) {
			return right, left
		}
		if isInstitutionLine(left) {
			return left, right
		}
	}
	return "", ""
}

func isInstitutionLine(line string) bool {
	lower := strings.ToLower(line)
	for _, w := range institutionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func looksLikeHonors(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "honor") || strings.Contains(lower, "honour") ||
		strings.Contains(lower, "cum laude") || strings.Contains(lower, "distinction") ||
		strings.Contains(lower, "dean's list")
}

func latestYear(line string) string {
	var best string
	for _, y := range reYear.FindAllString(line, -1) {
		if y > best {
			best = y
		}
	}
	return best
}
