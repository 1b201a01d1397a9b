package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

func newSQLiteRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	repo, err := NewSQLiteJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newJob() *entity.Job {
	return &entity.Job{
		ID:               uuid.New(),
		Status:           constants.JobStatusPending,
		TemplateID:       "default",
		OriginalFilename: "resume.pdf",
		Format:           constants.PDF,
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteJobRoundTrip(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	job := newJob()
	require.NoError(t, repo.CreateJob(ctx, job))

	got, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, constants.JobStatusPending, got.Status)
	assert.Equal(t, "resume.pdf", got.OriginalFilename)
	assert.Nil(t, got.ErrorMessage)
	assert.Nil(t, got.CompletedAt)
}

func TestSQLiteUpdatePersistsAllFields(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	job := newJob()
	require.NoError(t, repo.CreateJob(ctx, job))

	now := time.Now().UTC().Truncate(time.Second)
	dur := 1500 * time.Millisecond
	msg := "conversion failed"
	job.Status = constants.JobStatusFailed
	job.ErrorMessage = &msg
	job.Warnings = []string{"template fallback applied"}
	job.CompletedAt = &now
	job.ProcessingTime = &dur
	job.RecordVersion = 2
	require.NoError(t, repo.UpdateJob(ctx, job))

	got, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, msg, *got.ErrorMessage)
	assert.Equal(t, []string{"template fallback applied"}, got.Warnings)
	assert.Equal(t, 2, got.RecordVersion)
	require.NotNil(t, got.ProcessingTime)
	assert.Equal(t, dur, *got.ProcessingTime)
}

func TestSQLiteGetMissingIsNotFound(t *testing.T) {
	repo := newSQLiteRepo(t)
	_, err := repo.GetJob(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = repo.UpdateJob(context.Background(), newJob())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = repo.DeleteJob(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSQLiteListByBatchOrdered(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()
	batchID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		job := newJob()
		job.BatchID = &batchID
		job.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.CreateJob(ctx, job))
	}
	// unrelated job
	require.NoError(t, repo.CreateJob(ctx, newJob()))

	got, err := repo.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].CreatedAt.Before(got[2].CreatedAt))
	for _, j := range got {
		require.NotNil(t, j.BatchID)
		assert.Equal(t, batchID, *j.BatchID)
	}
}

func TestSQLiteListFinishedBefore(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	old := newJob()
	old.Status = constants.JobStatusRendered
	oldDone := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
	old.CompletedAt = &oldDone
	require.NoError(t, repo.CreateJob(ctx, old))

	fresh := newJob()
	fresh.Status = constants.JobStatusCompleted
	freshDone := time.Now().UTC().Truncate(time.Second)
	fresh.CompletedAt = &freshDone
	require.NoError(t, repo.CreateJob(ctx, fresh))

	pending := newJob()
	require.NoError(t, repo.CreateJob(ctx, pending))

	got, err := repo.ListFinishedBefore(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, old.ID, got[0].ID)
}

func TestSQLiteRecordVersions(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	job := newJob()
	require.NoError(t, repo.CreateJob(ctx, job))

	v1 := &entity.ExtractedRecord{Summary: "first pass", ConfidenceScore: 0.4}
	v2 := &entity.ExtractedRecord{Summary: "second pass", ConfidenceScore: 0.7}
	require.NoError(t, repo.SaveRecord(ctx, job.ID, 1, v1))
	require.NoError(t, repo.SaveRecord(ctx, job.ID, 2, v2))

	rec, version, err := repo.LatestRecord(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, "second pass", rec.Summary)
	assert.Equal(t, 0.7, rec.ConfidenceScore)

	require.NoError(t, repo.DeleteRecords(ctx, job.ID))
	_, _, err = repo.LatestRecord(ctx, job.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMemoryRepositoryMatchesContract(t *testing.T) {
	repo := NewMemoryJobRepository()
	ctx := context.Background()

	job := newJob()
	require.NoError(t, repo.CreateJob(ctx, job))
	assert.Error(t, repo.CreateJob(ctx, job))

	got, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)

	// mutating the returned clone must not touch the stored job
	got.Status = constants.JobStatusFailed
	again, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPending, again.Status)

	_, err = repo.GetJob(ctx, uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, repo.SaveRecord(ctx, job.ID, 1, &entity.ExtractedRecord{Summary: "s"}))
	rec, version, err := repo.LatestRecord(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "s", rec.Summary)

	require.NoError(t, repo.DeleteJob(ctx, job.ID))
	_, err = repo.GetJob(ctx, job.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestMemoryRecordsAreIsolated(t *testing.T) {
	repo := NewMemoryJobRepository()
	ctx := context.Background()

	job := newJob()
	require.NoError(t, repo.CreateJob(ctx, job))

	saved := &entity.ExtractedRecord{
		Skills:     []string{"Go", "SQL"},
		Experience: []entity.Experience{{Title: "Engineer", Company: "Initech"}},
	}
	require.NoError(t, repo.SaveRecord(ctx, job.ID, 1, saved))

	// mutating the caller's slice after save must not touch the stored version
	saved.Skills[0] = "MUTATED"

	rec, _, err := repo.LatestRecord(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", rec.Skills[0])

	// and mutating a returned record must not leak into later reads
	rec.Skills[0] = "MUTATED"
	rec.Experience[0].Company = "MUTATED"

	again, _, err := repo.LatestRecord(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", again.Skills[0])
	assert.Equal(t, "Initech", again.Experience[0].Company)
}
