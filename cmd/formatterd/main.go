// Command formatterd runs the resume formatting daemon: a worker pool fed by
// watched intake directories, with a retention sweeper cleaning up finished jobs.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentfold/resume-formatter/internal/artifact"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/core"
	"github.com/talentfold/resume-formatter/internal/core/async"
	"github.com/talentfold/resume-formatter/internal/extract"
	"github.com/talentfold/resume-formatter/internal/ingest"
	"github.com/talentfold/resume-formatter/internal/llm/openai"
	"github.com/talentfold/resume-formatter/internal/normalize"
	"github.com/talentfold/resume-formatter/internal/render"
	"github.com/talentfold/resume-formatter/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		repo repository.JobRepository
		err  error
	)
	switch cfg.Store.Driver {
	case "postgres":
		pool, perr := repository.OpenPool(ctx, repository.PoolConfig{
			DSN:             cfg.Store.PostgresDSN,
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime,
			MaxConnIdleTime: cfg.Store.MaxConnIdleTime,
			DialTimeout:     cfg.Store.DialTimeout,
		}, logger)
		if perr != nil {
			logger.Error("opening postgres pool", "error", perr)
			os.Exit(1)
		}
		defer pool.Close()
		repo, err = repository.NewPostgresJobRepository(ctx, pool)
	default:
		var sq *repository.SQLiteJobRepository
		sq, err = repository.NewSQLiteJobRepository(cfg.Store.SQLitePath)
		if err == nil {
			defer sq.Close()
			repo = sq
		}
	}
	if err != nil {
		logger.Error("opening job store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	logger.Info("job store ready", "driver", cfg.Store.Driver)

	store, err := artifact.NewStore(cfg.Artifacts.RootDir, logger)
	if err != nil {
		logger.Error("opening artifact store", "dir", cfg.Artifacts.RootDir, "error", err)
		os.Exit(1)
	}

	normalizer := normalize.NewNormalizer(normalize.Config{
		Pdftotext: cfg.Convert.Pdftotext,
		Antiword:  cfg.Convert.Antiword,
		Catdoc:    cfg.Convert.Catdoc,
	}, logger)
	engine := extract.NewEngine(logger)

	// The reconciler is always wired; without a configured default key it
	// only runs for jobs that carry a per-request credential.
	reconciler := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if cfg.LLM.APIKey == "" {
		logger.Info("no default reconciler key configured, per-job credentials only")
	}

	orch := core.NewOrchestrator(repo, store, normalizer, engine, reconciler,
		render.NewRegistry(), render.NewBinder(logger), logger)

	queue := async.NewJobQueue(orch, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)
	orch.AttachQueue(queue)

	sweeper := core.NewSweeper(orch, cfg.Artifacts.Retention, cfg.Artifacts.SweepSpec, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("starting sweeper", "error", err)
		os.Exit(1)
	}

	if len(cfg.Intake.Dirs) > 0 {
		intake := ingest.NewIntake(orch, cfg.Intake.TemplateID, logger)
		watcher := ingest.NewWatcher(ingest.Config{
			Dirs:        cfg.Intake.Dirs,
			TemplateID:  cfg.Intake.TemplateID,
			InitialScan: true,
			SkipHidden:  true,
			Debounce:    500 * time.Millisecond,
		}, intake, logger)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("intake watcher exited", "error", err)
			}
		}()
	}

	logger.Info("formatterd started",
		"workers", cfg.Pipeline.Workers,
		"intake_dirs", cfg.Intake.Dirs,
		"retention", cfg.Artifacts.Retention.String(),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	sweeper.Stop()
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)

	logger.Info("stopped")
}
