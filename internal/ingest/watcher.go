package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/talentfold/resume-formatter/constants"
)

// Watcher observes intake directories and feeds new resume files to an
// Intake. Directories are watched recursively; directories created after
// startup are picked up too.
type Watcher struct {
	cfg    Config
	intake *Intake
	logger *slog.Logger
}

func NewWatcher(cfg Config, intake *Intake, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, intake: intake, logger: logger}
}

// Run blocks until ctx is canceled, submitting files as they appear. Submit
// failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.cfg.Dirs) == 0 {
		return errors.New("no intake directories configured")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if w.cfg.SkipHidden && isHidden(path) && path != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return fsw.Add(path)
			}
			if w.cfg.InitialScan && supported(path) {
				w.submit(ctx, path)
			}
			return nil
		})
	}
	for _, dir := range w.cfg.Dirs {
		if err := addTree(dir); err != nil {
			return err
		}
	}
	w.logger.Info("ingest.watcher.started", "dirs", w.cfg.Dirs)

	var timer *time.Timer
	pending := make(map[string]struct{})
	flush := make(chan struct{}, 1)

	drain := func() {
		for p := range pending {
			delete(pending, p)
			w.submit(ctx, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ingest.watcher.stopped")
			return ctx.Err()
		case <-flush:
			drain()
		case e, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if e.Op.Has(fsnotify.Create) {
				// A new directory needs a watch of its own. Add is a no-op
				// failure for plain files, which is fine.
				if err := fsw.Add(e.Name); err == nil {
					w.logger.Debug("ingest.watcher.dir_added", "path", e.Name)
				}
			}
			if !supported(e.Name) || !e.Op.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			if w.cfg.SkipHidden && isHidden(e.Name) {
				continue
			}
			pending[e.Name] = struct{}{}
			if w.cfg.Debounce <= 0 {
				drain()
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, func() {
				select {
				case flush <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("ingest.watcher.error", "error", err)
		}
	}
}

func (w *Watcher) submit(ctx context.Context, path string) {
	res, err := w.intake.SubmitPath(ctx, path)
	if err != nil {
		w.logger.Warn("ingest.watcher.submit_failed", "path", path, "error", err)
		return
	}
	if res.Deduplicated {
		return
	}
	w.logger.Info("ingest.watcher.submitted", "path", path, "job_id", res.JobID)
}

func supported(path string) bool {
	return constants.MapExtToFormat(constants.NormalizeExt(filepath.Ext(path))) != ""
}
