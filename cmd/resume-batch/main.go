// Command resume-batch formats a directory of resumes in one run: every
// supported file is extracted, rendered with the chosen template, and written
// to an output directory alongside an XLSX batch report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/artifact"
	"github.com/talentfold/resume-formatter/internal/common"
	"github.com/talentfold/resume-formatter/internal/core"
	"github.com/talentfold/resume-formatter/internal/entity"
	"github.com/talentfold/resume-formatter/internal/export"
	"github.com/talentfold/resume-formatter/internal/extract"
	"github.com/talentfold/resume-formatter/internal/llm/openai"
	"github.com/talentfold/resume-formatter/internal/normalize"
	"github.com/talentfold/resume-formatter/internal/render"
	"github.com/talentfold/resume-formatter/internal/repository"
)

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of resumes to format (required)")
		out      = flag.String("out", "", "output directory (defaults to <dir>/formatted)")
		template = flag.String("template", render.DefaultTemplateID, "template to render with")
		report   = flag.String("report", "", "XLSX report path (defaults to <out>/batch_report.xlsx)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "formatted")
	}
	if *report == "" {
		*report = filepath.Join(*out, "batch_report.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()

	// A batch run is self-contained: jobs live in memory and artifacts in a
	// scratch directory; only the rendered outputs and the report survive.
	repo := repository.NewMemoryJobRepository()
	scratch, err := os.MkdirTemp("", "resume-batch-*")
	if err != nil {
		printError("Error: scratch dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(scratch)

	store, err := artifact.NewStore(scratch, logger)
	if err != nil {
		printError("Error: artifact store: %v\n", err)
		os.Exit(1)
	}

	normalizer := normalize.NewNormalizer(normalize.Config{
		Pdftotext: cfg.Convert.Pdftotext,
		Antiword:  cfg.Convert.Antiword,
		Catdoc:    cfg.Convert.Catdoc,
	}, logger)

	reconciler := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	orch := core.NewOrchestrator(repo, store, normalizer, extract.NewEngine(logger),
		reconciler, render.NewRegistry(), render.NewBinder(logger), logger)

	uploads, err := collectUploads(*dir, *template, cfg.LLM.APIKey)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(uploads) == 0 {
		printError("Error: no resume files (doc/docx/pdf) found under %s\n", *dir)
		os.Exit(1)
	}

	batchID, jobs, errs := orch.SubmitBatch(ctx, uploads)
	rejected := 0
	for i, err := range errs {
		if err != nil {
			printError("Skipped %s: %v\n", uploads[i].Filename, err)
			rejected++
		}
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		printError("Error: output dir: %v\n", err)
		os.Exit(1)
	}

	processed, failures := 0, 0
	for _, job := range jobs {
		if job == nil {
			continue
		}
		if err := runJob(ctx, orch, job, *template, *out); err != nil {
			printError("Failed %s: %v\n", job.OriginalFilename, err)
			failures++
			continue
		}
		processed++
	}

	reportWritten := false
	if batchID != uuid.Nil {
		svc := export.NewService(repo, logger)
		data, err := svc.BatchReportXLSX(ctx, batchID)
		if err != nil {
			printError("Report failed: %v\n", err)
		} else if err := os.WriteFile(*report, data, 0o644); err != nil {
			printError("Report write failed: %v\n", err)
		} else {
			reportWritten = true
		}
	}

	fmt.Printf("Batch formatting complete!\n")
	fmt.Printf("- Files found: %d\n", len(uploads))
	fmt.Printf("- Rejected: %d\n", rejected)
	fmt.Printf("- Formatted: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
	if reportWritten {
		fmt.Printf("- Report: %s\n", *report)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

// collectUploads walks root and reads every supported resume into an Upload.
// Hidden entries and the output of previous runs are skipped.
func collectUploads(root, templateID, credential string) ([]core.Upload, error) {
	var uploads []core.Upload
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && (strings.HasPrefix(base, ".") || base == "formatted") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(base, ".") {
			return nil
		}
		if constants.MapExtToFormat(constants.NormalizeExt(filepath.Ext(path))) == "" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		uploads = append(uploads, core.Upload{
			Filename:   base,
			Content:    content,
			TemplateID: templateID,
			Options: entity.ExtractionOptions{
				UseReconciler: credential != "",
				Credential:    credential,
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return uploads, nil
}

// runJob drives one job through the full pipeline and copies the rendered
// document into outDir under its original name.
func runJob(ctx context.Context, orch *core.Orchestrator, job *entity.Job, templateID, outDir string) error {
	if err := orch.Process(ctx, job.ID); err != nil {
		return err
	}
	status, err := orch.GetStatus(ctx, job.ID)
	if err != nil {
		return err
	}
	if status.Status == constants.JobStatusFailed {
		if status.ErrorMessage != nil {
			return fmt.Errorf("%s", *status.ErrorMessage)
		}
		return fmt.Errorf("processing failed")
	}

	if _, err := orch.Render(ctx, job.ID, templateID); err != nil {
		return err
	}
	data, _, err := orch.Download(ctx, job.ID)
	if err != nil {
		return err
	}

	stem := strings.TrimSuffix(job.OriginalFilename, filepath.Ext(job.OriginalFilename))
	dest := filepath.Join(outDir, stem+"_formatted.docx")
	return os.WriteFile(dest, data, 0o644)
}
