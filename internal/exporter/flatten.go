package exporter

import (
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// noDataMarker fills the section column of the single row emitted for a
// configuration that contained no extractable measurements.
const noDataMarker = "NO DATA"

// Headers returns the column headers shared by every tabular encoding.
func Headers() []string {
	return []string{
		"Sample ID",
		"Configuration",
		"Section",
		"Frequency (MHz)",
		"SR",
		"Polarization",
		"Correction (dB)",
		"Mesure (dBµV/m)",
		"Limite (dBµV/m)",
		"Marge (dB)",
		"Verdict",
	}
}

// Flatten renders the hierarchy into one record per measurement row,
// repeating the sample and configuration identifiers as leading columns.
// Ordering mirrors the hierarchy's first-seen order exactly. This is the
// single source of truth for both the CSV and the XLSX export.
func Flatten(report *domain.Report, eng *rules.Engine) [][]string {
	var records [][]string

	for i := range report.Samples {
		sample := &report.Samples[i]
		for j := range sample.Configurations {
			cfg := &sample.Configurations[j]
			if cfg.Empty() {
				records = append(records, []string{
					sample.ID, cfg.Name, noDataMarker,
					"-", "-", "-", "-", "-", "-", "-", "-",
				})
				continue
			}
			for k := range cfg.Sections {
				sec := &cfg.Sections[k]
				for _, row := range sec.Rows {
					records = append(records, []string{
						sample.ID,
						cfg.Name,
						sec.Name,
						eng.FormatFrequency(row.Frequency),
						row.SR,
						row.Polarization,
						eng.FormatOptionalDB(row.Correction),
						eng.FormatOptionalDB(row.Measurement),
						eng.FormatOptionalDB(row.Limit),
						eng.FormatOptionalDB(row.Margin),
						eng.FormatVerdict(row.Verdict),
					})
				}
			}
		}
	}

	return records
}
