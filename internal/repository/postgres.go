package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

// PoolConfig tunes the pgx pool for the shared deployment mode.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OpenPool creates a pgx pool and verifies connectivity.
func OpenPool(ctx context.Context, cfg PoolConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("repository.pool.parse_config_failed", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "resume-formatter"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("repository.pool.connect_failed", "error", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("repository.pool.ping_failed", "error", err)
		return nil, err
	}
	logger.Info("repository.pool.connected")
	return pool, nil
}

// PostgresJobRepository is the shared-deployment store.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresJobRepository(ctx context.Context, pool *pgxpool.Pool) (*PostgresJobRepository, error) {
	repo := &PostgresJobRepository{pool: pool}
	if err := repo.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresJobRepository) ensureSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		batch_id UUID,
		status TEXT NOT NULL,
		template_id TEXT NOT NULL,
		original_filename TEXT NOT NULL,
		format TEXT NOT NULL,
		output_filename TEXT,
		error_message TEXT,
		warnings JSONB,
		record_version INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		processing_ms BIGINT
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_batch ON jobs (batch_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_completed ON jobs (completed_at);
	CREATE TABLE IF NOT EXISTS job_records (
		job_id UUID NOT NULL,
		version INT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (job_id, version)
	);`
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) CreateJob(ctx context.Context, job *entity.Job) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs (id, batch_id, status, template_id, original_filename, format,
			output_filename, error_message, warnings, record_version, created_at, completed_at, processing_ms)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		pgJobArgs(job)...)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) UpdateJob(ctx context.Context, job *entity.Job) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET batch_id=$2, status=$3, template_id=$4, original_filename=$5,
			format=$6, output_filename=$7, error_message=$8, warnings=$9, record_version=$10,
			created_at=$11, completed_at=$12, processing_ms=$13 WHERE id=$1`,
		pgJobArgs(job)...)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, job.ID)
	}
	return nil
}

const pgJobColumns = `id, batch_id, status, template_id, original_filename, format,
	output_filename, error_message, warnings, record_version, created_at, completed_at, processing_ms`

func (r *PostgresJobRepository) GetJob(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pgJobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanPgJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return job, err
}

func (r *PostgresJobRepository) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, id)
	}
	return nil
}

func (r *PostgresJobRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]*entity.Job, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgJobColumns+` FROM jobs WHERE batch_id = $1 ORDER BY created_at, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch: %w", err)
	}
	defer rows.Close()
	return collectPgJobs(rows)
}

func (r *PostgresJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Job, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+pgJobColumns+` FROM jobs
		 WHERE completed_at IS NOT NULL AND completed_at < $1
		   AND status = ANY($2) ORDER BY id`,
		cutoff.UTC(),
		[]string{
			string(constants.JobStatusCompleted),
			string(constants.JobStatusRendered),
			string(constants.JobStatusFailed),
		})
	if err != nil {
		return nil, fmt.Errorf("list finished: %w", err)
	}
	defer rows.Close()
	return collectPgJobs(rows)
}

func (r *PostgresJobRepository) SaveRecord(ctx context.Context, jobID uuid.UUID, version int, rec *entity.ExtractedRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO job_records (job_id, version, payload) VALUES ($1,$2,$3)
		 ON CONFLICT (job_id, version) DO UPDATE SET payload = EXCLUDED.payload`,
		jobID, version, payload)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *PostgresJobRepository) LatestRecord(ctx context.Context, jobID uuid.UUID) (*entity.ExtractedRecord, int, error) {
	var (
		payload []byte
		version int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT payload, version FROM job_records WHERE job_id = $1 ORDER BY version DESC LIMIT 1`,
		jobID).Scan(&payload, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: record for job %s", common.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load record: %w", err)
	}
	var rec entity.ExtractedRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, 0, fmt.Errorf("decode record: %w", err)
	}
	return &rec, version, nil
}

func (r *PostgresJobRepository) DeleteRecords(ctx context.Context, jobID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM job_records WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func pgJobArgs(job *entity.Job) []any {
	var warnings any
	if len(job.Warnings) > 0 {
		b, _ := json.Marshal(job.Warnings)
		warnings = b
	}
	var completedAt any
	if job.CompletedAt != nil {
		completedAt = job.CompletedAt.UTC()
	}
	var processingMS any
	if job.ProcessingTime != nil {
		processingMS = job.ProcessingTime.Milliseconds()
	}
	var errMsg any
	if job.ErrorMessage != nil {
		errMsg = *job.ErrorMessage
	}
	return []any{
		job.ID, job.BatchID, string(job.Status), job.TemplateID,
		job.OriginalFilename, string(job.Format), nullIfEmpty(job.OutputFilename),
		errMsg, warnings, job.RecordVersion, job.CreatedAt.UTC(), completedAt, processingMS,
	}
}

func scanPgJob(row pgx.Row) (*entity.Job, error) {
	var (
		job          entity.Job
		batchID      *uuid.UUID
		status       string
		format       string
		output       *string
		errMsg       *string
		warnings     []byte
		completedAt  *time.Time
		processingMS *int64
	)
	err := row.Scan(&job.ID, &batchID, &status, &job.TemplateID, &job.OriginalFilename,
		&format, &output, &errMsg, &warnings, &job.RecordVersion, &job.CreatedAt,
		&completedAt, &processingMS)
	if err != nil {
		return nil, err
	}

	st, ok := constants.ParseJobStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown job status %q", status)
	}
	job.Status = st
	job.Format = constants.FileFormat(format)
	job.BatchID = batchID
	if output != nil {
		job.OutputFilename = *output
	}
	job.ErrorMessage = errMsg
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &job.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	job.CompletedAt = completedAt
	if processingMS != nil {
		d := time.Duration(*processingMS) * time.Millisecond
		job.ProcessingTime = &d
	}
	return &job, nil
}

func collectPgJobs(rows pgx.Rows) ([]*entity.Job, error) {
	var out []*entity.Job
	for rows.Next() {
		job, err := scanPgJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}
