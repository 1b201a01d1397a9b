package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/internal/entity"
)

// JobRepository persists jobs and their extracted records. Implementations
// return common.ErrNotFound for unknown IDs and deep-copied values so callers
// never share mutable state with the store.
type JobRepository interface {
	CreateJob(ctx context.Context, job *entity.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error)
	UpdateJob(ctx context.Context, job *entity.Job) error
	DeleteJob(ctx context.Context, id uuid.UUID) error

	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*entity.Job, error)
	// ListFinishedBefore returns jobs in a terminal or rendered state whose
	// completion time is older than the cutoff. Used by the retention sweeper.
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Job, error)

	// SaveRecord stores one immutable record version for the job.
	SaveRecord(ctx context.Context, jobID uuid.UUID, version int, rec *entity.ExtractedRecord) error
	// LatestRecord returns the newest record version for the job.
	LatestRecord(ctx context.Context, jobID uuid.UUID) (*entity.ExtractedRecord, int, error)
	// DeleteRecords removes every record version the job owns.
	DeleteRecords(ctx context.Context, jobID uuid.UUID) error
}
