package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	pipeerrors "emicli/internal/errors"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// xlsxSheet is the single sheet every spreadsheet export uses.
const xlsxSheet = "Measurements"

// XLSXWriter provides spreadsheet export functionality.
type XLSXWriter struct {
	eng *rules.Engine
}

// NewXLSXWriter creates a spreadsheet writer using the given rule engine
// for display formatting.
func NewXLSXWriter(eng *rules.Engine) *XLSXWriter {
	return &XLSXWriter{eng: eng}
}

// ExportReport writes the flattened report to path. The rows come from
// the same Flatten routine as the CSV export, so the two are always
// identical in content. Failures are OutputWriteErrors for "xlsx" only.
func (w *XLSXWriter) ExportReport(report *domain.Report, path string) error {
	if err := w.write(Headers(), Flatten(report, w.eng), path); err != nil {
		return pipeerrors.NewOutputWriteError("xlsx", path, err)
	}
	return nil
}

func (w *XLSXWriter) write(headers []string, records [][]string, path string) error {
	slog.Debug("writing XLSX file",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{w.eng.Config().HeaderColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %q: %w", h, err)
		}
	}

	for r, record := range records {
		for c, v := range record {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
