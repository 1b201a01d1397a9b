package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/talentfold/resume-formatter/internal/entity"
)

var (
	reEmail    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	rePhone    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	reLinkedIn = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)
	reWebsite  = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[\w.-]+\.[a-zA-Z]{2,}(?:/[\w.-]*)*`)
	reNonDigit = regexp.MustCompile(`[^\d+]`)
)

// Lines that are clearly not a candidate name.
var nameSkipPatterns = compileAll(
	`@`, `(?i)http`, `(?i)www`, `(?i)\.com`, `(?i)phone`, `(?i)email`, `(?i)address`,
	`(?i)resume`, `(?i)\bcv\b`, `(?i)curriculum`, `(?i)vitae`, `(?i)profile`, `(?i)summary`,
)

var nonNameWords = map[string]struct{}{
	"senior": {}, "junior": {}, "developer": {}, "engineer": {}, "manager": {},
	"analyst": {}, "consultant": {}, "specialist": {}, "director": {}, "lead": {},
}

var titleKeywords = []string{
	"developer", "engineer", "administrator", "consultant", "analyst", "architect",
	"manager", "lead", "specialist", "scientist", "designer", "tester", "qa", "devops",
	"full stack", "frontend", "backend", "cloud", "data", "security",
}

// extractContact pulls the contact block: regex anchors for email, phone and
// links, a positional heuristic for the candidate name, and a best-effort
// title sniff from the lines right under the name.
func (e *Engine) extractContact(lines []string, secs segmented, contribs *[]Contribution) entity.ContactInfo {
	var ci entity.ContactInfo
	text := strings.Join(lines, "\n")

	if m := reEmail.FindString(text); m != "" {
		ci.Email = m
		*contribs = append(*contribs, Contribution{Field: "email", Weight: weightEmail, Anchor: AnchorStrong})
	}
	if m := rePhone.FindString(text); m != "" {
		digits := reNonDigit.ReplaceAllString(m, "")
		if len(digits) >= 10 {
			ci.Phone = digits
			*contribs = append(*contribs, Contribution{Field: "phone", Weight: weightPhone, Anchor: AnchorStrong})
		}
	}
	if m := reLinkedIn.FindString(text); m != "" {
		ci.LinkedIn = m
	}
	for _, m := range reWebsite.FindAllString(reEmail.ReplaceAllString(text, ""), 8) {
		lower := strings.ToLower(m)
		if strings.Contains(m, "@") || strings.Contains(lower, "linkedin.com") {
			continue
		}
		ci.Website = m
		break
	}

	// name = first plausible line before any recognized section heading
	head := secs.lead
	if len(head) == 0 {
		head = lines
	}
	if len(head) > 5 {
		head = head[:5]
	}
	candidates := nonEmptyLines(head)
	for _, line := range candidates {
		if skipsName(line) {
			continue
		}
		if looksLikeName(line) {
			ci.Name = line
			*contribs = append(*contribs, Contribution{Field: "name", Weight: weightName, Anchor: AnchorWeak})
			break
		}
	}
	if ci.Name == "" {
		// lenient second pass over the very top of the document
		limit := 3
		for _, line := range candidates {
			if limit == 0 {
				break
			}
			limit--
			if len(line) < 60 && len(strings.Fields(line)) >= 2 &&
				!strings.ContainsAny(line, "@") && !strings.Contains(line, "http") {
				ci.Name = line
				*contribs = append(*contribs, Contribution{Field: "name", Weight: weightName, Anchor: AnchorWeak})
				break
			}
		}
	}

	// title: a short role phrase near the top, never a line with digits or @
	for i, line := range candidates {
		if i == 0 || i > 5 {
			continue
		}
		if len(line) > 70 || strings.ContainsAny(line, "@") || strings.ContainsAny(line, "0123456789") {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range titleKeywords {
			if strings.Contains(lower, kw) {
				ci.Title = strings.Trim(line, " ()•-\t")
				break
			}
		}
		if ci.Title != "" {
			break
		}
	}

	if ci.Name == "" {
		e.logger.Debug("extract.contact.no_name", slog.Int("head_lines", len(candidates)))
	}
	return ci
}

func skipsName(line string) bool {
	for _, re := range nameSkipPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// looksLikeName: 2-4 words, each capitalized and alphabetic (apostrophes and
// hyphens allowed), none from the role-word list.
func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if _, bad := nonNameWords[strings.ToLower(w)]; bad {
			return false
		}
		stripped := strings.NewReplacer("'", "", "-", "", ",", "").Replace(w)
		if stripped == "" {
			return false
		}
		r := []rune(stripped)[0]
		if !unicode.IsUpper(r) {
			return false
		}
		for _, c := range stripped {
			if !unicode.IsLetter(c) {
				return false
			}
		}
	}
	return true
}
