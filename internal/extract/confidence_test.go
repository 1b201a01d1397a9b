package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreEmptyIsZero(t *testing.T) {
	assert.Zero(t, Score(nil))
}

func TestScoreMonotonic(t *testing.T) {
	contribs := []Contribution{
		{Field: "email", Weight: weightEmail, Anchor: AnchorStrong},
	}
	base := Score(contribs)

	contribs = append(contribs, Contribution{Field: "name", Weight: weightName, Anchor: AnchorWeak})
	withName := Score(contribs)
	assert.Greater(t, withName, base)

	contribs = append(contribs, Contribution{Field: "experience", Weight: weightExperienceFirst, Anchor: AnchorStrong})
	assert.Greater(t, Score(contribs), withName)
}

func TestScoreClamped(t *testing.T) {
	var contribs []Contribution
	for i := 0; i < 50; i++ {
		contribs = append(contribs, Contribution{Field: "x", Weight: 0.2, Anchor: AnchorStrong})
	}
	assert.Equal(t, 1.0, Score(contribs))
}

func TestWeightsSumToOne(t *testing.T) {
	sum := weightName + weightEmail + weightPhone +
		weightExperienceFirst + weightExperienceMore +
		weightEducation + weightSkills + weightSkillsBreadth + weightSummary
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestAnchorGradesOrdering(t *testing.T) {
	strong := Score([]Contribution{{Field: "email", Weight: weightEmail, Anchor: AnchorStrong}})
	model := Score([]Contribution{{Field: "email", Weight: weightEmail, Anchor: AnchorModel}})
	weak := Score([]Contribution{{Field: "email", Weight: weightEmail, Anchor: AnchorWeak}})
	assert.Greater(t, strong, model)
	assert.Greater(t, model, weak)
}

func TestReplaceContribution(t *testing.T) {
	contribs := []Contribution{{Field: "name", Weight: weightName, Anchor: AnchorWeak}}
	contribs = ReplaceContribution(contribs, "name", weightName, AnchorModel)
	assert.Len(t, contribs, 1)
	assert.Equal(t, AnchorModel, contribs[0].Anchor)

	contribs = ReplaceContribution(contribs, "summary", weightSummary, AnchorModel)
	assert.Len(t, contribs, 2)
	assert.Equal(t, "summary", contribs[1].Field)
}
