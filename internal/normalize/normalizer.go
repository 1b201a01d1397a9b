package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talentfold/resume-formatter/constants"
	"github.com/talentfold/resume-formatter/internal/common"
)

// Config names the external conversion binaries. Empty fields fall back to
// the bare command names on PATH.
type Config struct {
	Pdftotext string
	Antiword  string
	Catdoc    string
}

// Document is the canonical plain-text-plus-layout representation of an
// uploaded resume, independent of source format. Identical input bytes always
// produce an identical Document.
type Document struct {
	Text     string               // canonical text, LF line endings
	Format   constants.FileFormat // source format
	Method   string               // "docx-native" | "pdf-text" | "doc-antiword" | "doc-catdoc"
	Pages    int
	Language string // BCP-47 tag of the detected language, "" when undetected
	Headings []int  // line indexes that look like section headings
	Bullets  []int  // line indexes that look like bullet items
	Warnings []string
	Duration time.Duration
}

// Lines splits the canonical text. Line indexes in Headings/Bullets refer to
// this slice.
func (d *Document) Lines() []string {
	return strings.Split(d.Text, "\n")
}

type Normalizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewNormalizer(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Antiword == "" {
		cfg.Antiword = "antiword"
	}
	if cfg.Catdoc == "" {
		cfg.Catdoc = "catdoc"
	}
	return &Normalizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Normalize converts the file at path into a canonical Document. A conversion
// failure (corrupt file, unsupported internal structure) reports
// common.ErrUnsupportedDocument so the orchestrator can fail the job without
// crashing the worker.
func (n *Normalizer) Normalize(ctx context.Context, path string, format constants.FileFormat) (Document, error) {
	start := time.Now()
	n.logger.Debug("normalize.start", "path", path, "format", format)

	var (
		raw      string
		method   string
		pages    int
		warnings []string
		err      error
	)
	switch format {
	case constants.DOCX:
		raw, err = extractDOCX(path)
		method = "docx-native"
	case constants.PDF:
		raw, pages, warnings, err = n.pdfToText(ctx, path)
		method = "pdf-text"
	case constants.DOC:
		raw, method, warnings, err = n.docToText(ctx, path)
	default:
		return Document{}, fmt.Errorf("%w: unsupported format %q", common.ErrUnsupportedDocument, format)
	}
	if err != nil {
		n.logger.Error("normalize.failed", "path", path, "format", format, "err", err)
		return Document{}, fmt.Errorf("%w: %v", common.ErrUnsupportedDocument, err)
	}

	doc := Document{
		Text:     Canonicalize(raw),
		Format:   format,
		Method:   method,
		Pages:    pages,
		Warnings: warnings,
	}
	if doc.Pages == 0 {
		doc.Pages = 1
	}
	doc.Headings, doc.Bullets = layoutHints(doc.Lines())
	doc.Language = detectLanguage(doc.Text)
	doc.Duration = time.Since(start)

	n.logger.Debug("normalize.ok",
		"path", path,
		"method", method,
		"pages", doc.Pages,
		"bytes", len(doc.Text),
		"language", doc.Language,
		"elapsed_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}
