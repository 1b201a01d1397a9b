package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

// MemoryJobRepository is the in-process store used when no database is
// configured, and the fixture store for tests.
type MemoryJobRepository struct {
	mu      sync.RWMutex
	jobs    map[uuid.UUID]*entity.Job
	records map[uuid.UUID]map[int]*entity.ExtractedRecord
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs:    make(map[uuid.UUID]*entity.Job),
		records: make(map[uuid.UUID]map[int]*entity.ExtractedRecord),
	}
}

func (r *MemoryJobRepository) CreateJob(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("%w: job %s already exists", common.ErrInvalidInput, job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *MemoryJobRepository) GetJob(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return job.Clone(), nil
}

func (r *MemoryJobRepository) UpdateJob(_ context.Context, job *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, job.ID)
	}
	r.jobs[job.ID] = job.Clone()
	return nil
}

func (r *MemoryJobRepository) DeleteJob(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	delete(r.jobs, id)
	return nil
}

func (r *MemoryJobRepository) ListByBatch(_ context.Context, batchID uuid.UUID) ([]*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Job
	for _, job := range r.jobs {
		if job.BatchID != nil && *job.BatchID == batchID {
			out = append(out, job.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *MemoryJobRepository) ListFinishedBefore(_ context.Context, cutoff time.Time) ([]*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Job
	for _, job := range r.jobs {
		if job.CompletedAt == nil || !job.Status.IsTerminal() {
			continue
		}
		if job.CompletedAt.Before(cutoff) {
			out = append(out, job.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *MemoryJobRepository) SaveRecord(_ context.Context, jobID uuid.UUID, version int, rec *entity.ExtractedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[jobID]; !ok {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, jobID)
	}
	versions := r.records[jobID]
	if versions == nil {
		versions = make(map[int]*entity.ExtractedRecord)
		r.records[jobID] = versions
	}
	versions[version] = rec.Clone()
	return nil
}

func (r *MemoryJobRepository) LatestRecord(_ context.Context, jobID uuid.UUID) (*entity.ExtractedRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions := r.records[jobID]
	if len(versions) == 0 {
		return nil, 0, fmt.Errorf("%w: record for job %s", common.ErrNotFound, jobID)
	}
	latest := 0
	for v := range versions {
		if v > latest {
			latest = v
		}
	}
	return versions[latest].Clone(), latest, nil
}

func (r *MemoryJobRepository) DeleteRecords(_ context.Context, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, jobID)
	return nil
}
