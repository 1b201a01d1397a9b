package extract

// Anchor grades how strongly an extracted field is tied to the source text.
type Anchor float64

const (
	// AnchorStrong covers fields found via a regex match or a structured
	// section heading.
	AnchorStrong Anchor = 1.0
	// AnchorModel covers fields supplied by the LLM reconciler.
	AnchorModel Anchor = 0.9
	// AnchorWeak covers fields inferred by position or proximity alone.
	AnchorWeak Anchor = 0.6
)

// Contribution is one field's share of the aggregate confidence score.
type Contribution struct {
	Field  string
	Weight float64
	Anchor Anchor
}

// Fixed category weights: contact > experience/education > skills > summary.
// The weights sum to 1.0 so a fully-anchored record scores exactly 1.
const (
	weightName            = 0.14
	weightEmail           = 0.14
	weightPhone           = 0.10
	weightExperienceFirst = 0.20
	weightExperienceMore  = 0.08
	weightEducation       = 0.14
	weightSkills          = 0.09
	weightSkillsBreadth   = 0.05
	weightSummary         = 0.06
)

// Score aggregates field contributions into one scalar in [0,1]. It is
// deterministic and monotonic: adding a correctly-anchored field can only
// raise or hold the score, never lower it.
func Score(contribs []Contribution) float64 {
	var score float64
	for _, c := range contribs {
		if c.Weight <= 0 || c.Anchor <= 0 {
			continue
		}
		score += c.Weight * float64(c.Anchor)
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// ReplaceContribution swaps the anchor for a named field, adding the
// contribution when absent. Used when the reconciler overrides a field.
func ReplaceContribution(contribs []Contribution, field string, weight float64, anchor Anchor) []Contribution {
	for i := range contribs {
		if contribs[i].Field == field {
			contribs[i].Anchor = anchor
			return contribs
		}
	}
	return append(contribs, Contribution{Field: field, Weight: weight, Anchor: anchor})
}

// FieldWeight exposes the fixed weight for a contact-level field name so the
// reconciler merge can add contributions for fields the rules missed.
func FieldWeight(field string) float64 {
	switch field {
	case "name":
		return weightName
	case "email":
		return weightEmail
	case "phone":
		return weightPhone
	case "experience":
		return weightExperienceFirst
	case "education":
		return weightEducation
	case "skills":
		return weightSkills
	case "summary":
		return weightSummary
	}
	return 0
}
