package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/core"
)

// Intake submits resume files to the pipeline, skipping content it has
// already seen. Deduplication is by sha256 of the file bytes, so the same
// resume dropped twice (or renamed) produces a single job per run.
type Intake struct {
	submitter  Submitter
	templateID string
	logger     *slog.Logger

	mu   sync.Mutex
	seen map[string]string // sha256 hex -> job id
}

func NewIntake(submitter Submitter, templateID string, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{
		submitter:  submitter,
		templateID: templateID,
		logger:     logger,
		seen:       make(map[string]string),
	}
}

// SubmitPath reads a single file and submits it as a job.
func (i *Intake) SubmitPath(ctx context.Context, path string) (Result, error) {
	var out Result

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if constants.MapExtToFormat(ext) == "" {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read: %w", err)
	}

	sum := sha256.Sum256(content)
	out.HashHex = hex.EncodeToString(sum[:])

	i.mu.Lock()
	if jobID, ok := i.seen[out.HashHex]; ok {
		i.mu.Unlock()
		out.JobID = jobID
		out.Deduplicated = true
		i.logger.Debug("ingest.intake.deduplicated", "path", abs, "job_id", jobID)
		return out, nil
	}
	i.mu.Unlock()

	job, err := i.submitter.Submit(ctx, core.Upload{
		Filename:   filepath.Base(abs),
		Content:    content,
		TemplateID: i.templateID,
	})
	if err != nil {
		return out, err
	}

	i.mu.Lock()
	i.seen[out.HashHex] = job.ID.String()
	i.mu.Unlock()

	out.JobID = job.ID.String()
	i.logger.Info("ingest.intake.submitted",
		"path", abs,
		"job_id", out.JobID,
		"size_bytes", len(content),
	)
	return out, nil
}

// ScanDirectory walks root, skips hidden entries if requested, and submits
// every supported file. Per-file failures are recorded, not fatal.
func (i *Intake) ScanDirectory(ctx context.Context, root string, skipHidden bool) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if constants.MapExtToFormat(constants.NormalizeExt(filepath.Ext(path))) == "" {
			return nil
		}
		stats.Matched++

		r, err := i.SubmitPath(ctx, path)
		if err != nil {
			results = append(results, Result{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
