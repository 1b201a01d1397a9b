package llm

import (
	"context"
	"errors"
)

// ErrDisabled reports that no reconciler is configured for this process.
var ErrDisabled = errors.New("llm reconciler disabled")

// ResumeFields is the normalized shape we want from the model.
type ResumeFields struct {
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Address         string   `json:"address,omitempty"`
	LinkedIn        string   `json:"linkedin,omitempty"`
	Website         string   `json:"website,omitempty"`
	Title           string   `json:"title,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	SummaryBullets  []string `json:"summary_bullets,omitempty"`
	Experience      []Job    `json:"experience,omitempty"`
	Education       []Degree `json:"education,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	ModelConfidence float32  `json:"confidence,omitempty"` // optional (0..1)
}

type Job struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
	IsCurrent   bool   `json:"is_current,omitempty"`
}

type Degree struct {
	Degree         string `json:"degree,omitempty"`
	Institution    string `json:"institution,omitempty"`
	Location       string `json:"location,omitempty"`
	GraduationDate string `json:"graduation_date,omitempty"`
	GPA            string `json:"gpa,omitempty"`
	Honors         string `json:"honors,omitempty"`
}

// ReconcileRequest carries the resume text plus hints for one model call.
// Credential is supplied per request, held only for the duration of the call,
// and must never appear in logs or storage.
type ReconcileRequest struct {
	ResumeText   string
	FilenameHint string
	Language     string
	Credential   string
}

// Reconciler is the interface the pipeline depends on. Implementations return
// the parsed fields plus the raw sanitized JSON for diagnostics.
type Reconciler interface {
	Reconcile(ctx context.Context, req ReconcileRequest) (ResumeFields, []byte, error)
}

// Disabled is the no-op reconciler used when no model is configured or the
// job did not opt in. Reconcile reports ErrDisabled so callers fall back to
// the rules-only result.
type Disabled struct{}

func (Disabled) Reconcile(context.Context, ReconcileRequest) (ResumeFields, []byte, error) {
	return ResumeFields{}, nil, ErrDisabled
}
