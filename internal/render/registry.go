package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

// Fallback chain when a requested template is unknown: richest first, the
// plain default last.
var fallbackChain = []string{"ezest-updated-bullets", "ezest-updated", "default"}

const DefaultTemplateID = "ezest-updated-bullets"

// Registry holds the built-in templates. It is immutable after construction,
// so lookups need no locking.
type Registry struct {
	templates map[string]entity.Template
}

func NewRegistry() *Registry {
	reg := &Registry{templates: make(map[string]entity.Template)}
	for _, t := range builtinTemplates() {
		reg.templates[t.ID] = t
	}
	return reg
}

// Get returns the named template, or common.ErrNotFound.
func (r *Registry) Get(id string) (entity.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return entity.Template{}, fmt.Errorf("%w: template %q", common.ErrNotFound, id)
	}
	return t, nil
}

// Resolve returns the requested template when known, otherwise the first
// available template from the fallback chain. The returned bool reports
// whether a fallback was taken.
func (r *Registry) Resolve(id string) (entity.Template, bool) {
	if t, ok := r.templates[id]; ok {
		return t, false
	}
	for _, fid := range fallbackChain {
		if t, ok := r.templates[fid]; ok {
			return t, true
		}
	}
	// the chain always ends in a registered built-in
	panic("render: no fallback template registered")
}

// List returns all templates ordered by ID.
func (r *Registry) List() []entity.Template {
	out := make([]entity.Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Preview returns the structural descriptor for a template without rendering
// any document.
func (r *Registry) Preview(id string) (entity.Preview, error) {
	t, err := r.Get(id)
	if err != nil {
		return entity.Preview{}, err
	}
	return entity.Preview{
		TemplateID: t.ID,
		Name:       t.Name,
		Header: map[string]string{
			"slot":  t.HeaderSlot,
			"style": "centered",
		},
		Sections: t.Sections,
	}, nil
}

func builtinTemplates() []entity.Template {
	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fields := []string{
		"name", "email", "phone", "title", "summary",
		"experience", "education", "skills", "certifications",
	}

	return []entity.Template{
		{
			ID:          "default",
			Name:        "Default",
			Description: "Plain chronological layout with paragraph sections.",
			Version:     "1.0",
			Fields:      fields,
			HeaderSlot:  "name",
			Sections: []entity.TemplateSection{
				{Title: "Professional Summary", Field: "summary"},
				{Title: "Work Experience", Field: "experience"},
				{Title: "Education", Field: "education"},
				{Title: "Skills", Field: "skills"},
				{Title: "Certifications", Field: "certifications"},
			},
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
		{
			ID:          "ezest-updated",
			Name:        "e-Zest Updated",
			Description: "Branded layout with contact line under the header.",
			Version:     "2.0",
			Fields:      fields,
			HeaderSlot:  "name",
			Sections: []entity.TemplateSection{
				{Title: "Summary", Field: "summary"},
				{Title: "Skills", Field: "skills"},
				{Title: "Professional Experience", Field: "experience"},
				{Title: "Education", Field: "education"},
				{Title: "Certifications", Field: "certifications"},
			},
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
		{
			ID:          "ezest-updated-bullets",
			Name:        "e-Zest Updated (Bullets)",
			Description: "Branded layout with bulleted summary and skills.",
			Version:     "2.1",
			Fields:      fields,
			HeaderSlot:  "name",
			Sections: []entity.TemplateSection{
				{Title: "Summary", Field: "summary", Bullets: true},
				{Title: "Skills", Field: "skills", Bullets: true},
				{Title: "Professional Experience", Field: "experience"},
				{Title: "Education", Field: "education"},
				{Title: "Certifications", Field: "certifications", Bullets: true},
			},
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
	}
}
