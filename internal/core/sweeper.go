package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper enforces the retention policy: finished jobs older than the
// retention window are cleaned up on a cron schedule.
type Sweeper struct {
	orch      *Orchestrator
	retention time.Duration
	spec      string
	logger    *slog.Logger
	cron      *cron.Cron
}

func NewSweeper(orch *Orchestrator, retention time.Duration, spec string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if retention <= 0 {
		retention = time.Hour
	}
	if spec == "" {
		spec = "@every 10m"
	}
	return &Sweeper{
		orch:      orch,
		retention: retention,
		spec:      spec,
		logger:    logger,
		cron:      cron.New(),
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sweeper.started", "spec", s.spec, "retention", s.retention.String())
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("sweeper.stopped")
}

// Sweep runs one retention pass. Jobs still in flight are left alone and
// retried on the next tick.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	jobs, err := s.orch.repo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweeper.list_failed", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	removed := 0
	for _, job := range jobs {
		if err := s.orch.Cleanup(ctx, job.ID); err != nil {
			s.logger.Warn("sweeper.cleanup_failed", "job_id", job.ID.String(), "error", err)
			continue
		}
		removed++
	}
	s.logger.Info("sweeper.pass", "expired", len(jobs), "removed", removed)
}
