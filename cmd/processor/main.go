// Command processor converts raw EMI test report documents into a
// styled results document plus CSV and XLSX exports. It processes a
// single file with -file or every .docx in the input directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"emicli/internal/config"
	"emicli/internal/files"
	"emicli/internal/infrastructure"
	"emicli/internal/pipeline"
	"emicli/internal/rules"
)

func main() {
	inDir := flag.String("in", "", "input directory for raw .docx files (defaults to raw/ relative to executable)")
	outDir := flag.String("out", "", "output directory for processed files (defaults to output/ relative to executable)")
	file := flag.String("file", "", "process a single document instead of the input directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	paths := config.GetPaths(cfg)
	if *inDir != "" {
		paths.InputDir = *inDir
	}
	if *outDir != "" {
		paths.OutputDir = *outDir
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if cfg.Logging.Output != "console" && !strings.Contains(cfg.Logging.FilePath, string(os.PathSeparator)) {
		cfg.Logging.FilePath = paths.GetLogPath(cfg.Logging.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()
	logger.Info("Starting EMI report processing",
		slog.String("input_dir", paths.InputDir),
		slog.String("output_dir", paths.OutputDir),
		slog.String("single_file", *file))

	var sources []string
	if *file != "" {
		sources = []string{*file}
	} else {
		discovered, err := files.NewDiscovery("").FindDocuments(paths.InputDir, cfg.Processing.OutputPrefix)
		if err != nil {
			logger.Error("Failed to read input directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
		for _, f := range discovered {
			sources = append(sources, f.Path)
		}
	}

	fmt.Printf("Found %d documents\n", len(sources))
	if len(sources) == 0 {
		logger.Warn("No documents found in input directory",
			slog.String("input_dir", paths.InputDir),
			slog.String("pattern", "*.docx"))
		fmt.Println("Processing complete: 0 documents")
		return
	}

	p := pipeline.New(rules.DefaultConfig(), paths.OutputDir, cfg.Processing.OutputPrefix)
	results := p.ProcessBatch(context.Background(), sources)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
			fmt.Printf("FAILED: %s\n", r.Source)
			continue
		}
		pass, fail, incomplete := r.Report.VerdictCounts()
		fmt.Printf("Processed %s: %d rows (%d pass, %d fail, %d incomplete)\n",
			r.Source, r.Report.RowCount(), pass, fail, incomplete)
	}

	fmt.Printf("Processing complete: %d documents, %d failed\n", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
