// Package ingest feeds resumes from watched intake directories into the
// processing pipeline. Files dropped into an intake directory are picked up,
// deduplicated by content hash, and submitted as jobs.
package ingest

import (
	"context"
	"time"

	"github.com/talentfold/resume-formatter/internal/core"
	"github.com/talentfold/resume-formatter/internal/entity"
)

// Submitter accepts uploads into the pipeline. *core.Orchestrator satisfies it.
type Submitter interface {
	Submit(ctx context.Context, up core.Upload) (*entity.Job, error)
}

// Result is the per-file intake outcome.
type Result struct {
	SourcePath   string
	JobID        string
	Deduplicated bool
	HashHex      string
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Config controls the intake watcher.
type Config struct {
	Dirs        []string      // directories to watch (recursive)
	TemplateID  string        // template applied to auto-submitted jobs
	InitialScan bool          // submit files already present at startup
	SkipHidden  bool          // ignore dotfiles and dot-directories
	Debounce    time.Duration // coalesce rapid write/rename bursts
}
