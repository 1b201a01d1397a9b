package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/artifact"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/extract"
	"github.com/talentfold/resume-formatter/internal/llm"
	"github.com/talentfold/resume-formatter/internal/normalize"
	"github.com/talentfold/resume-formatter/internal/render"
	"github.com/talentfold/resume-formatter/internal/repository"
)

// Enqueuer hands accepted jobs to the async worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID uuid.UUID) error
}

// Upload is one resume submission.
type Upload struct {
	Filename   string
	Content    []byte
	TemplateID string
	Options    entity.ExtractionOptions
}

// Orchestrator owns the job lifecycle: it is the only component that moves a
// job between statuses. Extraction options, including any reconciler
// credential, live only in orchestrator memory while the job is in flight.
type Orchestrator struct {
	repo       repository.JobRepository
	store      *artifact.Store
	normalizer *normalize.Normalizer
	engine     *extract.Engine
	reconciler llm.Reconciler
	registry   *render.Registry
	binder     *render.Binder
	logger     *slog.Logger

	queue Enqueuer

	mu       sync.Mutex
	inflight map[uuid.UUID]context.CancelFunc
	canceled map[uuid.UUID]struct{}
	options  map[uuid.UUID]entity.ExtractionOptions
}

func NewOrchestrator(
	repo repository.JobRepository,
	store *artifact.Store,
	normalizer *normalize.Normalizer,
	engine *extract.Engine,
	reconciler llm.Reconciler,
	registry *render.Registry,
	binder *render.Binder,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if reconciler == nil {
		reconciler = llm.Disabled{}
	}
	return &Orchestrator{
		repo:       repo,
		store:      store,
		normalizer: normalizer,
		engine:     engine,
		reconciler: reconciler,
		registry:   registry,
		binder:     binder,
		logger:     logger,
		inflight:   make(map[uuid.UUID]context.CancelFunc),
		canceled:   make(map[uuid.UUID]struct{}),
		options:    make(map[uuid.UUID]entity.ExtractionOptions),
	}
}

// AttachQueue wires the worker pool. Without a queue, accepted jobs wait until
// the caller drives Process directly (tests and the batch CLI do this).
func (o *Orchestrator) AttachQueue(q Enqueuer) { o.queue = q }

// Submit validates one upload and creates a pending job. Validation failures
// surface as ErrInvalidInput and never create a job.
func (o *Orchestrator) Submit(ctx context.Context, up Upload) (*entity.Job, error) {
	format, err := validateUpload(up)
	if err != nil {
		return nil, err
	}
	return o.acceptJob(ctx, up, format, nil)
}

// SubmitBatch validates and accepts each upload independently; one bad file
// rejects only itself. A shared batch ID is assigned when more than one
// upload is accepted. Returned errors are positional, nil for accepted files.
func (o *Orchestrator) SubmitBatch(ctx context.Context, uploads []Upload) (uuid.UUID, []*entity.Job, []error) {
	formats := make([]constants.FileFormat, len(uploads))
	errs := make([]error, len(uploads))
	accepted := 0
	for i, up := range uploads {
		formats[i], errs[i] = validateUpload(up)
		if errs[i] == nil {
			accepted++
		}
	}

	var batchID uuid.UUID
	var batchRef *uuid.UUID
	if accepted > 1 {
		batchID = uuid.New()
		batchRef = &batchID
	}

	jobs := make([]*entity.Job, len(uploads))
	for i, up := range uploads {
		if errs[i] != nil {
			continue
		}
		jobs[i], errs[i] = o.acceptJob(ctx, up, formats[i], batchRef)
	}
	return batchID, jobs, errs
}

func validateUpload(up Upload) (constants.FileFormat, error) {
	if strings.TrimSpace(up.Filename) == "" {
		return "", fmt.Errorf("%w: filename is required", common.ErrInvalidInput)
	}
	format := constants.MapExtToFormat(filepath.Ext(up.Filename))
	if format == "" {
		return "", fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, filepath.Ext(up.Filename))
	}
	if len(up.Content) == 0 {
		return "", fmt.Errorf("%w: file is empty", common.ErrInvalidInput)
	}
	if len(up.Content) > constants.MaxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrInvalidInput, constants.MaxFileSize)
	}
	return format, nil
}

func (o *Orchestrator) acceptJob(ctx context.Context, up Upload, format constants.FileFormat, batchID *uuid.UUID) (*entity.Job, error) {
	job := &entity.Job{
		ID:               uuid.New(),
		BatchID:          batchID,
		Status:           constants.JobStatusPending,
		TemplateID:       up.TemplateID,
		OriginalFilename: filepath.Base(up.Filename),
		Format:           format,
		CreatedAt:        time.Now().UTC(),
	}
	if job.TemplateID == "" {
		job.TemplateID = render.DefaultTemplateID
	}
	if _, fell := o.registry.Resolve(job.TemplateID); fell {
		job.Warnings = append(job.Warnings,
			fmt.Sprintf("template %q not found, fallback applied", job.TemplateID))
	}

	if _, err := o.store.Put(job.ID, sourceName(format), up.Content); err != nil {
		return nil, common.WrapError(err, "store source")
	}
	if err := o.repo.CreateJob(ctx, job); err != nil {
		_ = o.store.Delete(job.ID)
		return nil, common.WrapError(err, "create job")
	}

	o.mu.Lock()
	o.options[job.ID] = up.Options
	o.mu.Unlock()

	o.logger.Info("orchestrator.submit.accepted",
		"job_id", job.ID.String(),
		"filename", job.OriginalFilename,
		"format", string(format),
		"template", job.TemplateID,
		"batched", batchID != nil,
	)

	if o.queue != nil {
		if err := o.queue.Enqueue(ctx, job.ID); err != nil {
			return nil, common.WrapError(err, "enqueue job")
		}
	}
	return job, nil
}

func sourceName(format constants.FileFormat) string {
	return "source." + strings.ToLower(string(format))
}

// GetStatus returns the job's current state.
func (o *Orchestrator) GetStatus(ctx context.Context, id uuid.UUID) (*entity.Job, error) {
	return o.repo.GetJob(ctx, id)
}

// GetResult returns the latest extracted record. Jobs still in flight report
// ErrNotReady; failed jobs report their stored failure.
func (o *Orchestrator) GetResult(ctx context.Context, id uuid.UUID) (*entity.ExtractedRecord, error) {
	job, err := o.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case job.Status.HasResult():
		rec, _, err := o.repo.LatestRecord(ctx, id)
		return rec, err
	case job.Status == constants.JobStatusFailed:
		msg := "processing failed"
		if job.ErrorMessage != nil {
			msg = *job.ErrorMessage
		}
		return nil, common.NewAppError("JOB_FAILED", msg, nil)
	default:
		return nil, fmt.Errorf("%w: job is %s", common.ErrNotReady, job.Status)
	}
}

// Cancel stops a pending or processing job. The in-flight pass, if any, is
// interrupted; the job lands in failed with a cancellation message.
func (o *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) error {
	job, err := o.repo.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != constants.JobStatusPending && job.Status != constants.JobStatusProcessing {
		return fmt.Errorf("%w: cannot cancel a %s job", common.ErrInvalidStateTransition, job.Status)
	}

	o.mu.Lock()
	o.canceled[id] = struct{}{}
	cancel := o.inflight[id]
	delete(o.options, id)
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	msg := "canceled by request"
	now := time.Now().UTC()
	job.Status = constants.JobStatusFailed
	job.ErrorMessage = &msg
	job.CompletedAt = &now
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return common.WrapError(err, "persist cancellation")
	}
	o.logger.Info("orchestrator.cancel.ok", "job_id", id.String())
	return nil
}

// Regenerate re-runs extraction for a failed, completed, or rendered job with
// fresh options. The next successful pass writes a new record version.
func (o *Orchestrator) Regenerate(ctx context.Context, id uuid.UUID, opts entity.ExtractionOptions) error {
	job, err := o.repo.GetJob(ctx, id)
	if err != nil {
		return err
	}
	// Only finished jobs may re-enter processing here; pending jobs already
	// have a pass coming.
	switch job.Status {
	case constants.JobStatusFailed, constants.JobStatusCompleted, constants.JobStatusRendered:
	default:
		return fmt.Errorf("%w: cannot regenerate a %s job", common.ErrInvalidStateTransition, job.Status)
	}

	o.mu.Lock()
	if _, busy := o.inflight[id]; busy {
		o.mu.Unlock()
		return fmt.Errorf("%w: job %s", common.ErrJobBusy, id)
	}
	delete(o.canceled, id)
	o.options[id] = opts
	o.mu.Unlock()

	o.logger.Info("orchestrator.regenerate.accepted",
		"job_id", id.String(), "use_reconciler", opts.UseReconciler)

	if o.queue != nil {
		return o.queue.Enqueue(ctx, id)
	}
	return nil
}

// Cleanup removes the job, its record versions, and every artifact it owns.
// Cleanup is final: the ID dangles afterwards and all reads return not-found.
func (o *Orchestrator) Cleanup(ctx context.Context, id uuid.UUID) error {
	o.mu.Lock()
	if _, busy := o.inflight[id]; busy {
		o.mu.Unlock()
		return fmt.Errorf("%w: job %s", common.ErrJobBusy, id)
	}
	delete(o.options, id)
	delete(o.canceled, id)
	o.mu.Unlock()

	if _, err := o.repo.GetJob(ctx, id); err != nil {
		return err
	}
	if err := o.store.Delete(id); err != nil {
		return common.WrapError(err, "delete artifacts")
	}
	if err := o.repo.DeleteRecords(ctx, id); err != nil {
		return common.WrapError(err, "delete records")
	}
	if err := o.repo.DeleteJob(ctx, id); err != nil {
		return common.WrapError(err, "delete job")
	}
	o.logger.Info("orchestrator.cleanup.ok", "job_id", id.String())
	return nil
}

// BatchStatus summarizes every job in a batch.
type BatchStatus struct {
	BatchID   uuid.UUID
	Jobs      []*entity.Job
	Pending   int
	Active    int
	Completed int
	Rendered  int
	Failed    int
}

func (o *Orchestrator) GetBatchStatus(ctx context.Context, batchID uuid.UUID) (*BatchStatus, error) {
	jobs, err := o.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: batch %s", common.ErrNotFound, batchID)
	}
	st := &BatchStatus{BatchID: batchID, Jobs: jobs}
	for _, j := range jobs {
		switch j.Status {
		case constants.JobStatusPending:
			st.Pending++
		case constants.JobStatusProcessing:
			st.Active++
		case constants.JobStatusCompleted:
			st.Completed++
		case constants.JobStatusRendered:
			st.Rendered++
		case constants.JobStatusFailed:
			st.Failed++
		}
	}
	return st, nil
}

// DownloadBatch bundles every rendered output in the batch into one archive.
// Jobs that have not rendered yet are skipped; a batch with nothing rendered
// reports ErrNotReady.
func (o *Orchestrator) DownloadBatch(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	jobs, err := o.repo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: batch %s", common.ErrNotFound, batchID)
	}

	var entries []artifact.ArchiveEntry
	for _, j := range jobs {
		if j.Status == constants.JobStatusRendered && j.OutputFilename != "" {
			entries = append(entries, artifact.ArchiveEntry{JobID: j.ID, Name: j.OutputFilename})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no rendered outputs in batch %s", common.ErrNotReady, batchID)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return o.store.Archive(ctx, entries)
}

// Templates exposes the registry for the serving layer.
func (o *Orchestrator) Templates() *render.Registry { return o.registry }
