package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// SQLiteJobRepository persists jobs in a single-file database. Records are
// stored as JSON payloads keyed by (job, version).
type SQLiteJobRepository struct {
	db *sql.DB
}

func NewSQLiteJobRepository(path string) (*SQLiteJobRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: db path is required", common.ErrInvalidInput)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &SQLiteJobRepository{db: db}
	if err := repo.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteJobRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteJobRepository) init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename
// (e.g. "001_init.sql" -> 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

const jobColumns = `id, batch_id, status, template_id, original_filename, format,
	output_filename, error_message, warnings, record_version, created_at, completed_at, processing_ms`

func (r *SQLiteJobRepository) CreateJob(ctx context.Context, job *entity.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		jobArgs(job)...)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *SQLiteJobRepository) UpdateJob(ctx context.Context, job *entity.Job) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET batch_id=?, status=?, template_id=?, original_filename=?, format=?,
			output_filename=?, error_message=?, warnings=?, record_version=?, created_at=?,
			completed_at=?, processing_ms=? WHERE id=?`,
		append(jobArgs(job)[1:], job.ID.String())...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, job.ID)
	}
	return nil
}

func (r *SQLiteJobRepository) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return job, err
}

func (r *SQLiteJobRepository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteJobRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*entity.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE batch_id = ? ORDER BY created_at, id`, batchID.String())
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE completed_at IS NOT NULL AND completed_at < ?
		   AND status IN (?, ?, ?) ORDER BY id`,
		cutoff.UTC(),
		string(constants.JobStatusCompleted), string(constants.JobStatusRendered), string(constants.JobStatusFailed))
	if err != nil {
		return nil, fmt.Errorf("list finished: %w", err)
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteJobRepository) SaveRecord(ctx context.Context, jobID uuid.UUID, version int, rec *entity.ExtractedRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO job_records (job_id, version, payload) VALUES (?, ?, ?)`,
		jobID.String(), version, string(payload))
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *SQLiteJobRepository) LatestRecord(ctx context.Context, jobID uuid.UUID) (*entity.ExtractedRecord, int, error) {
	var (
		payload string
		version int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT payload, version FROM job_records WHERE job_id = ? ORDER BY version DESC LIMIT 1`,
		jobID.String()).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: record for job %s", common.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load record: %w", err)
	}
	var rec entity.ExtractedRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, 0, fmt.Errorf("decode record: %w", err)
	}
	return &rec, version, nil
}

func (r *SQLiteJobRepository) DeleteRecords(ctx context.Context, jobID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM job_records WHERE job_id = ?`, jobID.String()); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func jobArgs(job *entity.Job) []any {
	var batchID any
	if job.BatchID != nil {
		batchID = job.BatchID.String()
	}
	var errMsg any
	if job.ErrorMessage != nil {
		errMsg = *job.ErrorMessage
	}
	var warnings any
	if len(job.Warnings) > 0 {
		b, _ := json.Marshal(job.Warnings)
		warnings = string(b)
	}
	var completedAt any
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.UTC()
	}
	var processingMS any
	if job.ProcessingTime != nil {
		processingMS = job.ProcessingTime.Milliseconds()
	}
	return []any{
		job.ID.String(), batchID, string(job.Status), job.TemplateID,
		job.OriginalFilename, string(job.Format), nullIfEmpty(job.OutputFilename),
		errMsg, warnings, job.RecordVersion, job.CreatedAt.UTC(), completedAt, processingMS,
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*entity.Job, error) {
	var (
		job          entity.Job
		idStr        string
		batchID      sql.NullString
		status       string
		format       string
		output       sql.NullString
		errMsg       sql.NullString
		warnings     sql.NullString
		completedAt  sql.NullTime
		processingMS sql.NullInt64
	)
	err := row.Scan(&idStr, &batchID, &status, &job.TemplateID, &job.OriginalFilename,
		&format, &output, &errMsg, &warnings, &job.RecordVersion, &job.CreatedAt,
		&completedAt, &processingMS)
	if err != nil {
		return nil, err
	}

	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse job id: %w", err)
	}
	if batchID.Valid {
		id, err := uuid.Parse(batchID.String)
		if err != nil {
			return nil, fmt.Errorf("parse batch id: %w", err)
		}
		job.BatchID = &id
	}
	st, ok := constants.ParseJobStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown job status %q", status)
	}
	job.Status = st
	job.Format = constants.FileFormat(format)
	if output.Valid {
		job.OutputFilename = output.String
	}
	if errMsg.Valid {
		msg := errMsg.String
		job.ErrorMessage = &msg
	}
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &job.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	if processingMS.Valid {
		d := time.Duration(processingMS.Int64) * time.Millisecond
		job.ProcessingTime = &d
	}
	return &job, nil
}

func collectJobs(rows *sql.Rows) ([]*entity.Job, error) {
	var out []*entity.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
