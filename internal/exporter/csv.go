package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	pipeerrors "emicli/internal/errors"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	eng *rules.Engine
}

// NewCSVWriter creates a CSV writer using the given rule engine for
// display formatting.
func NewCSVWriter(eng *rules.Engine) *CSVWriter {
	return &CSVWriter{eng: eng}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // add UTF-8 BOM for Excel compatibility
}

// ExportReport writes the flattened report to path. Any failure is an
// OutputWriteError for the "csv" format; sibling formats are unaffected.
func (w *CSVWriter) ExportReport(report *domain.Report, path string) error {
	err := w.WriteCSV(path, WriteOptions{
		Headers:   Headers(),
		Records:   Flatten(report, w.eng),
		BOMPrefix: true,
	})
	if err != nil {
		return pipeerrors.NewOutputWriteError("csv", path, err)
	}
	return nil
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	slog.Debug("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// BOM helps spreadsheet tools recognize UTF-8, which matters for
	// the µ in the unit headers.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
