package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// StripFences removes a leading/trailing markdown code fence the model may
// wrap around the JSON payload.
func StripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return []byte(s)
}

// NormalizeAndSanitizeJSON
// - Strips markdown fences
// - Drops null/empty optionals
// - Trims string fields
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(StripFences(raw), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)

	// rename synonyms to our schema
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	renamed("full_name", "name")
	renamed("email_address", "email")
	renamed("phone_number", "phone")
	renamed("linkedin_url", "linkedin")
	renamed("work_experience", "experience")
	renamed("professional_summary", "summary")

	// drop null / "" string fields
	strKeys := []string{"name", "email", "phone", "address", "linkedin", "website", "title", "summary"}
	for _, k := range strKeys {
		switch t := m[k].(type) {
		case nil:
			if _, ok := m[k]; ok {
				delete(m, k)
				dropped = append(dropped, k+"(null)")
			}
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}

	// list fields must be arrays; anything else is dropped
	listKeys := []string{"summary_bullets", "experience", "education", "skills", "certifications"}
	for _, k := range listKeys {
		if v, ok := m[k]; ok {
			if _, isList := v.([]any); !isList {
				delete(m, k)
				dropped = append(dropped, k+"(type)")
			}
		}
	}

	// remove unknown keys
	allowed := map[string]struct{}{
		"name": {}, "email": {}, "phone": {}, "address": {}, "linkedin": {},
		"website": {}, "title": {}, "summary": {}, "summary_bullets": {},
		"experience": {}, "education": {}, "skills": {}, "certifications": {},
		"confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.reconcile.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// SanitizeEntryFields removes nested entry keys the schema does not know, so
// a mostly-good payload still validates. We only touch the nested objects.
func SanitizeEntryFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	scrub := func(listKey string, allowed map[string]struct{}) {
		list, ok := m[listKey].([]any)
		if !ok {
			return
		}
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for k, v := range maps.Clone(obj) {
				if _, known := allowed[k]; !known {
					delete(obj, k)
					dropped = append(dropped, listKey+"."+k)
					continue
				}
				if v == nil {
					delete(obj, k)
					dropped = append(dropped, listKey+"."+k+"(null)")
				}
			}
		}
	}

	scrub("experience", map[string]struct{}{
		"title": {}, "company": {}, "location": {}, "start_date": {},
		"end_date": {}, "description": {}, "is_current": {},
	})
	scrub("education", map[string]struct{}{
		"degree": {}, "institution": {}, "location": {}, "graduation_date": {},
		"gpa": {}, "honors": {},
	})

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
