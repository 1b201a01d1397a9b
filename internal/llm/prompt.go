package llm

import (
	"strings"
)

const maxPromptChars = 12000

// BuildSystemPrompt composes the system message with strict-but-practical
// formatting rules for resume parsing.
func BuildSystemPrompt(req ReconcileRequest) string {
	parts := []string{
		"You are a resume parser. Return ONLY JSON that matches the provided JSON Schema.",
		"Extract the candidate's contact details, summary, work experience, education, skills, and certifications.",
		"Keep dates exactly as written in the resume; do not invent or reformat them.",
		"For 'summary_bullets', split the professional summary into short bullet-sized statements.",
		"List experience entries newest first, as ordered in the resume.",
		"Skills must be individual technologies or competencies, not sentences.",
		"Never output null. If a field is not present in the resume, omit it.",
		"Never fabricate information that is not in the resume text.",
	}
	if lang := strings.TrimSpace(req.Language); lang != "" && lang != "en" {
		parts = append(parts, "The resume is written in language code '"+lang+"'. Keep field values in the original language.")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the resume text with a filename hint.
func BuildUserPrompt(req ReconcileRequest) string {
	var b strings.Builder
	if fn := strings.TrimSpace(req.FilenameHint); fn != "" {
		b.WriteString("Filename: ")
		b.WriteString(fn)
		b.WriteString("\n")
	}
	b.WriteString("\nResume text:\n")
	text := req.ResumeText
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}
	b.WriteString(text)
	return b.String()
}
