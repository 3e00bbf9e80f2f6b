// Package compose renders the finalized measurement hierarchy into a
// styled word-processor document: one heading per sample group, one
// sub-heading per configuration, one table per section with colored
// verdict cells, and a fixed signature block. Composition is purely a
// rendering pass over already-finalized data; it performs no computation
// and can only fail on output I/O.
package compose

import (
	"log/slog"
	"strconv"
	"time"

	pipeerrors "emicli/internal/errors"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// resultsHeading is the fixed top-level heading of every composed
// document.
const resultsHeading = "1.1 Test results"

// Composer writes the formatted output document.
type Composer struct {
	eng *rules.Engine
	now func() time.Time
}

// NewComposer creates a composer using the given rule engine for
// display formatting and styling.
func NewComposer(eng *rules.Engine) *Composer {
	return &Composer{eng: eng, now: time.Now}
}

// Compose writes the report to a .docx file at path. Failures are
// OutputWriteErrors for the "docx" format only; the tabular exports of
// the same document still attempt to complete.
func (c *Composer) Compose(report *domain.Report, path string) error {
	slog.Debug("composing output document",
		slog.String("path", path),
		slog.Int("sample_count", len(report.Samples)))

	var w docWriter

	w.heading(1, resultsHeading)

	for i := range report.Samples {
		sample := &report.Samples[i]
		w.heading(2, "Sample "+sample.ID)

		for j := range sample.Configurations {
			conf := &sample.Configurations[j]
			w.heading(3, conf.Name)

			if len(conf.Parameters) > 0 {
				c.parameterTable(&w, conf)
			}

			if conf.Empty() {
				w.paragraph("No data extracted for this configuration.")
				continue
			}

			for k := range conf.Sections {
				c.sectionTable(&w, &conf.Sections[k])
			}
			c.summaryTable(&w, conf)
		}
	}

	c.signatureBlock(&w)

	if err := w.save(path); err != nil {
		return pipeerrors.NewOutputWriteError("docx", path, err)
	}
	return nil
}

func (c *Composer) parameterTable(w *docWriter, conf *domain.Configuration) {
	cfg := c.eng.Config()
	rows := make([][]cell, 0, len(conf.Parameters)+1)
	rows = append(rows, []cell{
		{text: "Parameter", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
		{text: "Value", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
	})
	for _, p := range conf.Parameters {
		rows = append(rows, []cell{{text: p.Key}, {text: p.Value}})
	}
	w.table(rows)
}

func (c *Composer) sectionTable(w *docWriter, sec *domain.Section) {
	cfg := c.eng.Config()

	header := []string{
		"Section", "Frequency (MHz)", "SR", "Polarization", "Correction (dB)",
		"Mesure (dBµV/m)", "Limite (dBµV/m)", "Marge (dB)", "Verdict",
	}
	headerRow := make([]cell, len(header))
	for i, h := range header {
		headerRow[i] = cell{text: h, fill: cfg.HeaderColor, bold: true, color: "FFFFFF"}
	}

	rows := [][]cell{headerRow}
	for _, row := range sec.Rows {
		verdict := cell{text: c.eng.FormatVerdict(row.Verdict), bold: true}
		switch row.Verdict {
		case domain.VerdictPass:
			verdict.fill = cfg.PassColor
			verdict.color = "FFFFFF"
		case domain.VerdictFail:
			verdict.fill = cfg.FailColor
			verdict.color = "FFFFFF"
		}
		rows = append(rows, []cell{
			{text: sec.Name},
			{text: c.eng.FormatFrequency(row.Frequency)},
			{text: row.SR},
			{text: row.Polarization},
			{text: c.eng.FormatOptionalDB(row.Correction)},
			{text: c.eng.FormatOptionalDB(row.Measurement)},
			{text: c.eng.FormatOptionalDB(row.Limit)},
			{text: c.eng.FormatOptionalDB(row.Margin)},
			verdict,
		})
	}
	w.table(rows)
}

func (c *Composer) summaryTable(w *docWriter, conf *domain.Configuration) {
	cfg := c.eng.Config()
	summaries, global := c.eng.Summarize(conf)

	rows := [][]cell{{
		{text: "Section", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
		{text: "Rows", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
		{text: "Failures", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
		{text: "Verdict", fill: cfg.HeaderColor, bold: true, color: "FFFFFF"},
	}}
	for _, s := range summaries {
		verdict := cell{text: string(s.Verdict), bold: true, color: "FFFFFF"}
		if s.Verdict == domain.VerdictPass {
			verdict.fill = cfg.PassColor
		} else {
			verdict.fill = cfg.FailColor
		}
		rows = append(rows, []cell{
			{text: s.Section},
			{text: strconv.Itoa(s.Rows)},
			{text: strconv.Itoa(s.Failures)},
			verdict,
		})
	}
	w.table(rows)
	w.paragraph("Global verdict: " + string(global))
}

func (c *Composer) signatureBlock(w *docWriter) {
	cfg := c.eng.Config()
	w.paragraph("")
	w.paragraph("Processed by: " + cfg.Candidate)
	w.paragraph("Date: " + c.now().Format("2006-01-02"))
	w.paragraph("Signature:")
}

