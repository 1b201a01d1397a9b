package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/repository"
)

func TestBatchReportXLSX(t *testing.T) {
	repo := repository.NewMemoryJobRepository()
	ctx := context.Background()
	batchID := uuid.New()

	done := &entity.Job{
		ID:               uuid.New(),
		BatchID:          &batchID,
		Status:           constants.JobStatusRendered,
		TemplateID:       "default",
		OriginalFilename: "jane.pdf",
		Format:           constants.PDF,
		OutputFilename:   "formatted_jane.docx",
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, repo.CreateJob(ctx, done))
	require.NoError(t, repo.SaveRecord(ctx, done.ID, 1, &entity.ExtractedRecord{
		ContactInfo:     entity.ContactInfo{Name: "Jane Doe", Email: "jane@example.com"},
		ConfidenceScore: 0.87,
	}))

	msg := "conversion failed"
	failed := &entity.Job{
		ID:               uuid.New(),
		BatchID:          &batchID,
		Status:           constants.JobStatusFailed,
		TemplateID:       "default",
		OriginalFilename: "broken.doc",
		Format:           constants.DOC,
		ErrorMessage:     &msg,
		CreatedAt:        time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, repo.CreateJob(ctx, failed))

	svc := NewService(repo, nil)
	data, err := svc.BatchReportXLSX(ctx, batchID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Batch Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Source File", rows[0][0])
	assert.Equal(t, "jane.pdf", rows[1][0])
	assert.Equal(t, "rendered", rows[1][1])
	assert.Equal(t, "Jane Doe", rows[1][2])
	assert.Equal(t, "0.87", rows[1][5])
	assert.Equal(t, "broken.doc", rows[2][0])
	assert.Equal(t, "failed", rows[2][1])
	assert.Contains(t, rows[2][9], "conversion failed")
}

func TestBatchReportUnknownBatch(t *testing.T) {
	svc := NewService(repository.NewMemoryJobRepository(), nil)
	_, err := svc.BatchReportXLSX(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
