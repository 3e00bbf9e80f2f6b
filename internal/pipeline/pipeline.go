// Package pipeline orchestrates the full document run: read the raw
// document, classify its content, build the measurement hierarchy,
// derive verdicts, then write the three output artifacts. Output
// formats run concurrently and fail independently; one bad document
// never aborts a batch.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"emicli/internal/compose"
	"emicli/internal/config"
	"emicli/internal/docscan"
	pipeerrors "emicli/internal/errors"
	"emicli/internal/exporter"
	"emicli/internal/infrastructure"
	"emicli/internal/report"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// Pipeline processes raw documents into their output artifacts.
type Pipeline struct {
	scanner   *docscan.Scanner
	extractor *report.Extractor
	engine    *rules.Engine
	composer  *compose.Composer
	csv       *exporter.CSVWriter
	xlsx      *exporter.XLSXWriter

	outputDir    string
	outputPrefix string
}

// New creates a pipeline writing artifacts under outputDir with the
// given file name prefix.
func New(ruleCfg rules.Config, outputDir, outputPrefix string) *Pipeline {
	eng := rules.NewEngine(ruleCfg)
	return &Pipeline{
		scanner:      docscan.NewScanner(ruleCfg),
		extractor:    report.NewExtractor(ruleCfg),
		engine:       eng,
		composer:     compose.NewComposer(eng),
		csv:          exporter.NewCSVWriter(eng),
		xlsx:         exporter.NewXLSXWriter(eng),
		outputDir:    outputDir,
		outputPrefix: outputPrefix,
	}
}

// Result is the outcome of one document run.
type Result struct {
	Source  string
	RunID   string
	Report  *domain.Report
	Outputs map[string]string // format -> written path
	Issues  *pipeerrors.IssueReport

	// Err is set when the document itself could not be read; no
	// outputs exist in that case. OutputErrs carry per-format write
	// failures; the remaining formats still complete.
	Err        error
	OutputErrs []error
}

// Failed reports whether the run produced anything less than a full
// set of artifacts.
func (r *Result) Failed() bool {
	return r.Err != nil || len(r.OutputErrs) > 0
}

// ProcessDocument runs the pipeline for a single raw document.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string) *Result {
	ctx = infrastructure.EnsureRunID(ctx)
	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "pipeline").
		With(slog.String("document", filepath.Base(path)))

	result := &Result{
		Source:  path,
		RunID:   infrastructure.GetRunID(ctx),
		Outputs: make(map[string]string),
		Issues:  &pipeerrors.IssueReport{},
	}

	logger.Info("processing document")

	blocks, err := docscan.ReadBlocks(path)
	if err != nil {
		infrastructure.WithError(logger, err).Error("document unreadable")
		result.Err = err
		return result
	}

	events := p.scanner.Scan(blocks, result.Issues)
	rep := p.extractor.Extract(filepath.Base(path), events, result.Issues)
	p.engine.ApplyReport(rep)
	result.Report = rep

	pass, fail, incomplete := rep.VerdictCounts()
	logger.Info("extraction complete",
		slog.Int("samples", len(rep.Samples)),
		slog.Int("rows", rep.RowCount()),
		slog.Int("pass", pass),
		slog.Int("fail", fail),
		slog.Int("incomplete", incomplete),
		slog.Int("issues", len(result.Issues.Issues)))

	result.Issues.Log(logger)

	p.writeOutputs(ctx, rep, path, result)

	if result.Failed() {
		logger.Warn("document finished with errors",
			slog.Int("output_errors", len(result.OutputErrs)))
	} else {
		logger.Info("document done", slog.Int("outputs", len(result.Outputs)))
	}
	return result
}

// writeOutputs renders the three artifacts concurrently. Each format
// records its own failure; a docx write error never blocks the CSV.
func (p *Pipeline) writeOutputs(ctx context.Context, rep *domain.Report, source string, result *Result) {
	type output struct {
		format string
		path   string
		write  func(*domain.Report, string) error
	}
	outputs := []output{
		{"docx", p.outputPath(source, "docx"), p.composer.Compose},
		{"csv", p.outputPath(source, "csv"), p.csv.ExportReport},
		{"xlsx", p.outputPath(source, "xlsx"), p.xlsx.ExportReport},
	}

	errs := make([]error, len(outputs))
	g, _ := errgroup.WithContext(ctx)
	for i, out := range outputs {
		i, out := i, out
		g.Go(func() error {
			errs[i] = out.write(rep, out.path)
			return nil
		})
	}
	// Goroutines only record errors, the group itself cannot fail.
	_ = g.Wait()

	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "pipeline")
	for i, out := range outputs {
		if errs[i] != nil {
			infrastructure.WithError(logger, errs[i]).Error("output failed",
				slog.String("format", out.format))
			result.OutputErrs = append(result.OutputErrs, errs[i])
			continue
		}
		result.Outputs[out.format] = out.path
	}
}

func (p *Pipeline) outputPath(source, ext string) string {
	return filepath.Join(p.outputDir, config.OutputName(p.outputPrefix, source, ext))
}

// ProcessBatch runs every document independently and in order. A
// failed document is reported in its result and the batch moves on.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string) []*Result {
	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), "batch")
	logger.Info("starting batch", slog.Int("documents", len(paths)))

	results := make([]*Result, 0, len(paths))
	for _, path := range paths {
		// Each document gets its own run ID.
		results = append(results, p.ProcessDocument(infrastructure.ContextWithRunID(ctx), path))
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	logger.Info("batch complete",
		slog.Int("documents", len(results)),
		slog.Int("failed", failed))
	return results
}
