package extract

import (
	"strings"

	"github.com/talentfold/resume-formatter/constants"
)

const (
	maxSkills          = 20
	skillsBreadthFloor = 3
)

var skillSplitter = strings.NewReplacer(
	";", ",", "|", ",", "•", ",", "·", ",", "●", ",", "▪", ",",
)

// extractSkills flattens the skills section into a deduplicated list. Tokens
// keep first-appearance order and original casing; duplicates compare
// case-insensitively. Capped at maxSkills.
func extractSkills(secs segmented, contribs *[]Contribution) []string {
	raw := nonEmptyLines(secs.lines(constants.SectionSkills))
	if len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, line := range raw {
		line = strings.TrimLeft(line, "•·●▪-* \t")
		// "Languages: Go, Python" keeps only the value part
		if idx := strings.Index(line, ":"); idx >= 0 && idx < 30 {
			line = line[idx+1:]
		}
		for _, tok := range strings.Split(skillSplitter.Replace(line), ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" || len(tok) > 40 {
				continue
			}
			key := strings.ToLower(tok)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tok)
			if len(out) == maxSkills {
				break
			}
		}
		if len(out) == maxSkills {
			break
		}
	}

	if len(out) > 0 {
		*contribs = append(*contribs, Contribution{Field: "skills", Weight: weightSkills, Anchor: AnchorStrong})
	}
	if len(out) > skillsBreadthFloor {
		*contribs = append(*contribs, Contribution{Field: "skills_breadth", Weight: weightSkillsBreadth, Anchor: AnchorStrong})
	}
	return out
}
