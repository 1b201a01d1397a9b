package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/extract"
	"github.com/talentfold/resume-formatter/internal/llm"
)

// Process runs one extraction pass for the job. At most one pass per job is
// in flight at a time; a concurrent attempt reports ErrJobBusy. Cancellation
// is cooperative: the pass aborts at the next stage boundary and the job
// keeps the failed status Cancel wrote.
func (o *Orchestrator) Process(ctx context.Context, jobID uuid.UUID) error {
	o.mu.Lock()
	if _, gone := o.canceled[jobID]; gone {
		delete(o.canceled, jobID)
		o.mu.Unlock()
		o.logger.Info("orchestrator.process.skipped_canceled", "job_id", jobID.String())
		return nil
	}
	if _, busy := o.inflight[jobID]; busy {
		o.mu.Unlock()
		return fmt.Errorf("%w: job %s", common.ErrJobBusy, jobID)
	}
	ctx, cancel := context.WithCancel(ctx)
	o.inflight[jobID] = cancel
	opts := o.options[jobID]
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		delete(o.inflight, jobID)
		// the credential never outlives the pass
		delete(o.options, jobID)
		o.mu.Unlock()
	}()

	job, err := o.repo.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !constants.CanTransition(job.Status, constants.JobStatusProcessing) {
		return fmt.Errorf("%w: cannot process a %s job", common.ErrInvalidStateTransition, job.Status)
	}

	job.Status = constants.JobStatusProcessing
	job.ErrorMessage = nil
	job.CompletedAt = nil
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return common.WrapError(err, "mark processing")
	}

	start := time.Now()
	rec, warnings, err := o.runPass(ctx, job, opts)
	elapsed := time.Since(start)

	if err != nil {
		if o.wasCanceled(jobID) {
			o.logger.Info("orchestrator.process.canceled",
				"job_id", jobID.String(), "elapsed_ms", elapsed.Milliseconds())
			return nil
		}
		return o.markFailed(ctx, job, elapsed, err)
	}

	job.Warnings = append(job.Warnings, warnings...)
	job.RecordVersion++
	if err := o.repo.SaveRecord(ctx, job.ID, job.RecordVersion, rec); err != nil {
		return o.markFailed(ctx, job, elapsed, common.WrapError(err, "save record"))
	}

	now := time.Now().UTC()
	job.Status = constants.JobStatusCompleted
	job.CompletedAt = &now
	job.ProcessingTime = &elapsed
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return common.WrapError(err, "mark completed")
	}

	o.logger.Info("orchestrator.process.completed",
		"job_id", job.ID.String(),
		"record_version", job.RecordVersion,
		"confidence", rec.ConfidenceScore,
		"warnings", len(job.Warnings),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return nil
}

func (o *Orchestrator) runPass(ctx context.Context, job *entity.Job, opts entity.ExtractionOptions) (*entity.ExtractedRecord, []string, error) {
	doc, err := o.normalizer.Normalize(ctx, o.store.Path(job.ID, sourceName(job.Format)), job.Format)
	if err != nil {
		return nil, nil, err
	}
	warnings := append([]string(nil), doc.Warnings...)

	res, err := o.engine.Extract(doc)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	if opts.UseReconciler {
		fields, _, rerr := o.reconciler.Reconcile(ctx, llm.ReconcileRequest{
			ResumeText:   doc.Text,
			FilenameHint: job.OriginalFilename,
			Language:     doc.Language,
			Credential:   opts.Credential,
		})
		switch {
		case rerr == nil:
			res = llm.Merge(res, fields)
		case errors.Is(rerr, context.Canceled) || errors.Is(rerr, context.DeadlineExceeded):
			return nil, nil, rerr
		default:
			// the model is advisory: keep the rules-only result
			o.logger.Warn("orchestrator.process.reconcile_failed",
				"job_id", job.ID.String(), "error", rerr)
			warnings = append(warnings, "reconciler unavailable, rules-only result")
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	res.Record.ConfidenceScore = extract.Score(res.Contributions)
	return &res.Record, warnings, nil
}

func (o *Orchestrator) wasCanceled(jobID uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.canceled[jobID]; ok {
		delete(o.canceled, jobID)
		return true
	}
	return false
}

func (o *Orchestrator) markFailed(ctx context.Context, job *entity.Job, elapsed time.Duration, cause error) error {
	msg := cause.Error()
	now := time.Now().UTC()
	job.Status = constants.JobStatusFailed
	job.ErrorMessage = &msg
	job.CompletedAt = &now
	job.ProcessingTime = &elapsed
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		o.logger.Error("orchestrator.process.persist_failure_failed",
			"job_id", job.ID.String(), "error", err)
	}
	o.logger.Error("orchestrator.process.failed",
		"job_id", job.ID.String(),
		"error", cause,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return cause
}
