package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reRuleNoise  = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)
)

// Canonicalize collapses noisy whitespace into the canonical text form.
// Conservative: keeps line breaks, collapses >2 newlines into a single blank
// line, strips form feeds and horizontal-rule noise. Deterministic for a given
// input string.
func Canonicalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reRuleNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(s)
}

var bulletMarkers = []string{"•", "·", "●", "▪", "- ", "* ", "o "}

// layoutHints marks heading-like and bullet lines so the extraction engine can
// anchor section boundaries without re-deriving layout.
func layoutHints(lines []string) (headings, bullets []int) {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isBulletLine(trimmed) {
			bullets = append(bullets, i)
			continue
		}
		if isHeadingLine(trimmed) {
			headings = append(headings, i)
		}
	}
	return headings, bullets
}

func isBulletLine(s string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}

// isHeadingLine is a coarse shape test: short, no terminal punctuation, and
// either all-caps or title-case. The extraction engine layers keyword matching
// on top of this.
func isHeadingLine(s string) bool {
	if len(s) > 60 {
		return false
	}
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 5 {
		return false
	}
	if strings.HasSuffix(s, ".") || strings.HasSuffix(s, ",") || strings.HasSuffix(s, ";") {
		return false
	}
	hasLetter := false
	allUpper := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				allUpper = false
			}
		}
	}
	if !hasLetter {
		return false
	}
	if allUpper {
		return true
	}
	// title case: every word starts with an upper-case letter
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// detectLanguage returns a canonical BCP-47 tag for the document language,
// or "" when detection is unreliable.
func detectLanguage(text string) string {
	if len(text) < 40 {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return tag.String()
}
