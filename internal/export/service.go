package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/repository"
)

// Service produces XLSX batch reports: one row per job with its status,
// extracted contact fields, and confidence, so a recruiter can audit a batch
// without opening every rendered document.
type Service struct {
	repo   repository.JobRepository
	logger *slog.Logger
}

func NewService(repo repository.JobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// BatchReportXLSX returns an XLSX workbook (as bytes) summarizing every job
// in the batch.
func (s *Service) BatchReportXLSX(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	start := time.Now()

	jobs, err := s.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch: %w", err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: batch %s", common.ErrNotFound, batchID)
	}

	f := excelize.NewFile()
	const sheet = "Batch Report"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultIndex, _ := f.GetSheetIndex("Sheet1")
	if defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Source File",
		"Status",
		"Candidate",
		"Email",
		"Phone",
		"Confidence",
		"Template",
		"Output File",
		"Warnings",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, job := range jobs {
		var rec *entity.ExtractedRecord
		if job.Status.HasResult() {
			if r, _, err := s.repo.LatestRecord(ctx, job.ID); err == nil {
				rec = r
			}
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, job.OriginalFilename)
		write(2, string(job.Status))
		if rec != nil {
			write(3, rec.ContactInfo.Name)
			write(4, rec.ContactInfo.Email)
			write(5, rec.ContactInfo.Phone)
			write(6, fmt.Sprintf("%.2f", rec.ConfidenceScore))
		}
		write(7, job.TemplateID)
		write(8, job.OutputFilename)
		write(9, truncate(strings.Join(job.Warnings, "; "), 140))
		if job.ErrorMessage != nil {
			write(10, truncate(*job.ErrorMessage, 140))
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // source file
	_ = f.SetColWidth(sheet, "B", "B", 12) // status
	_ = f.SetColWidth(sheet, "C", "C", 24) // candidate
	_ = f.SetColWidth(sheet, "D", "E", 24) // contact
	_ = f.SetColWidth(sheet, "F", "F", 12) // confidence
	_ = f.SetColWidth(sheet, "G", "H", 40) // template/output
	_ = f.SetColWidth(sheet, "I", "J", 48) // warnings/error

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"batch_id", batchID.String(),
		"rows", len(jobs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
