package entity

import "time"

// TemplateSection is one ordered content slot in a template's structure.
type TemplateSection struct {
	Title   string `json:"title"`
	Field   string `json:"field"`   // record field the section binds (summary, experience, ...)
	Bullets bool   `json:"bullets"` // render list content as bullet lines
}

// Template is a named, versioned target document structure. Templates are
// read-only reference data registered at process start.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version"`
	Fields      []string          `json:"fields"`
	HeaderSlot  string            `json:"header_slot"` // record field rendered in the header, normally the candidate name
	Sections    []TemplateSection `json:"sections"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Preview is the structural descriptor returned by the preview operation.
type Preview struct {
	TemplateID string            `json:"template_id"`
	Name       string            `json:"name"`
	Header     map[string]string `json:"header"`
	Sections   []TemplateSection `json:"sections"`
}
