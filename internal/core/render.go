package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
)

// Render binds the job's latest record into a template and writes the output
// artifact. Re-rendering overwrites the previous output in one atomic step.
// An empty templateID keeps the job's template; unknown IDs fall back with a
// recorded warning.
func (o *Orchestrator) Render(ctx context.Context, id uuid.UUID, templateID string) (*entity.Job, error) {
	job, err := o.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.Status.HasResult() {
		return nil, fmt.Errorf("%w: cannot render a %s job", common.ErrInvalidStateTransition, job.Status)
	}

	requested := templateID
	if requested == "" {
		requested = job.TemplateID
	}
	tpl, fell := o.registry.Resolve(requested)
	if fell {
		job.Warnings = append(job.Warnings,
			fmt.Sprintf("template %q not found, rendered with %q", requested, tpl.ID))
	}

	rec, version, err := o.repo.LatestRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := o.binder.Bind(*rec, tpl)
	if err != nil {
		return nil, common.WrapError(err, "bind template")
	}

	name := fmt.Sprintf("formatted_%s_%s.docx", job.ID, tpl.ID)
	if _, err := o.store.Put(job.ID, name, out); err != nil {
		return nil, common.WrapError(err, "store output")
	}

	job.Status = constants.JobStatusRendered
	job.TemplateID = tpl.ID
	job.OutputFilename = name
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return nil, common.WrapError(err, "mark rendered")
	}

	o.logger.Info("orchestrator.render.ok",
		"job_id", job.ID.String(),
		"template", tpl.ID,
		"record_version", version,
		"output", name,
		"bytes", len(out),
	)
	return job, nil
}

// Download returns the rendered artifact bytes for the job.
func (o *Orchestrator) Download(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	job, err := o.repo.GetJob(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if job.Status != constants.JobStatusRendered || job.OutputFilename == "" {
		return nil, "", fmt.Errorf("%w: job has no rendered output", common.ErrNotReady)
	}
	data, err := o.store.Get(job.ID, job.OutputFilename)
	if err != nil {
		return nil, "", err
	}
	return data, job.OutputFilename, nil
}
