// Package rules computes the derived fields of a measurement row (margin
// and verdict) and owns the display-formatting rules for frequencies and
// dB values. The engine is a pure function over normalized rows: no side
// effects, deterministic, and the stored numeric values are never
// truncated, only their rendered representation is.
package rules

import (
	"fmt"

	"emicli/pkg/contracts/domain"
)

// Engine applies compliance rules and formatting to finalized rows.
type Engine struct {
	cfg Config
}

// NewEngine creates a rule engine for the given rule configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the rule configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Apply computes margin and verdict for one row. Margin is exactly
// limit − measurement; the verdict is PASS iff margin ≥ 0. A row
// missing either value is marked INCOMPLETE and keeps a nil margin.
func (e *Engine) Apply(row *domain.MeasurementRow) {
	if row.Measurement == nil || row.Limit == nil {
		row.Margin = nil
		row.Verdict = domain.VerdictIncomplete
		return
	}
	margin := *row.Limit - *row.Measurement
	row.Margin = &margin
	if margin >= 0 {
		row.Verdict = domain.VerdictPass
	} else {
		row.Verdict = domain.VerdictFail
	}
}

// ApplyReport applies the rules to every row of the finalized hierarchy.
func (e *Engine) ApplyReport(report *domain.Report) {
	for i := range report.Samples {
		for j := range report.Samples[i].Configurations {
			cfg := &report.Samples[i].Configurations[j]
			for k := range cfg.Sections {
				for l := range cfg.Sections[k].Rows {
					e.Apply(&cfg.Sections[k].Rows[l])
				}
			}
		}
	}
}

// FormatFrequency renders a frequency in MHz: 5 decimal places below
// 10 MHz, 3 at or above. The underlying value is never rounded, only
// the rendering.
func (e *Engine) FormatFrequency(mhz float64) string {
	if mhz < e.cfg.FreqBreak {
		return fmt.Sprintf("%.*f", e.cfg.FreqHighPrecision, mhz)
	}
	return fmt.Sprintf("%.*f", e.cfg.FreqLowPrecision, mhz)
}

// FormatDB renders a dB-valued field with exactly two decimal places.
func (e *Engine) FormatDB(v float64) string {
	return fmt.Sprintf("%.*f", e.cfg.DBPrecision, v)
}

// FormatOptionalDB renders an optional dB value, using a dash for
// missing cells so output stays an honest mirror of the source.
func (e *Engine) FormatOptionalDB(v *float64) string {
	if v == nil {
		return "-"
	}
	return e.FormatDB(*v)
}

// FormatVerdict renders a verdict, with a dash for rows that have none.
func (e *Engine) FormatVerdict(v domain.Verdict) string {
	if v == "" || v == domain.VerdictIncomplete {
		return "-"
	}
	return string(v)
}

// SectionSummary is the per-section synthesis rendered under each
// configuration: row count, failure count and the section verdict.
type SectionSummary struct {
	Section  string
	Rows     int
	Failures int
	Verdict  domain.Verdict
}

// Summarize computes the per-section summaries and the configuration's
// global verdict: PASS only when no section contains a failing row.
func (e *Engine) Summarize(cfg *domain.Configuration) ([]SectionSummary, domain.Verdict) {
	summaries := make([]SectionSummary, 0, len(cfg.Sections))
	global := domain.VerdictPass
	for i := range cfg.Sections {
		sec := &cfg.Sections[i]
		failures := 0
		for _, row := range sec.Rows {
			if row.Verdict == domain.VerdictFail {
				failures++
			}
		}
		verdict := domain.VerdictPass
		if failures > 0 {
			verdict = domain.VerdictFail
			global = domain.VerdictFail
		}
		summaries = append(summaries, SectionSummary{
			Section:  sec.Name,
			Rows:     len(sec.Rows),
			Failures: failures,
			Verdict:  verdict,
		})
	}
	return summaries, global
}
