package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/constants"
)

// Job represents one tracked unit of work converting one uploaded resume
// into one rendered artifact. Jobs are mutated only through orchestrator
// state transitions.
type Job struct {
	ID               uuid.UUID            `json:"id"`
	BatchID          *uuid.UUID           `json:"batch_id,omitempty"`
	Status           constants.JobStatus  `json:"status"`
	TemplateID       string               `json:"template_id"`
	OriginalFilename string               `json:"original_filename"`
	Format           constants.FileFormat `json:"format"`
	OutputFilename   string               `json:"output_filename,omitempty"`
	ErrorMessage     *string              `json:"error_message,omitempty"`
	Warnings         []string             `json:"warnings,omitempty"`
	RecordVersion    int                  `json:"record_version"`
	CreatedAt        time.Time            `json:"created_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	ProcessingTime   *time.Duration       `json:"processing_time,omitempty"`
}

// ExtractionOptions carries per-job extraction flags. The credential lives only
// in orchestrator memory for the duration of the processing pass; it is never
// persisted with the job and never logged.
type ExtractionOptions struct {
	UseReconciler bool
	Credential    string
}

// Clone returns a deep copy so callers never share mutable slices with the store.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.BatchID != nil {
		id := *j.BatchID
		cp.BatchID = &id
	}
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		cp.ErrorMessage = &msg
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		cp.CompletedAt = &t
	}
	if j.ProcessingTime != nil {
		d := *j.ProcessingTime
		cp.ProcessingTime = &d
	}
	if j.Warnings != nil {
		cp.Warnings = append([]string(nil), j.Warnings...)
	}
	return &cp
}
