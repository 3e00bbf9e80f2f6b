package domain

import (
	"sort"
	"strings"
)

// Verdict classifies a measurement row against its limit.
type Verdict string

const (
	VerdictPass Verdict = "PASS"
	VerdictFail Verdict = "FAIL"
	// VerdictIncomplete marks rows that lack a measurement or a limit.
	// They are retained in every output but carry no pass/fail result.
	VerdictIncomplete Verdict = "INCOMPLETE"
)

// MeasurementRow is one emission measurement extracted from a raw report
// table. Frequency is in MHz, Measurement and Limit in dBµV/m, Correction
// and Margin in dB. Optional numeric fields are nil when the source cell
// was empty. Margin and Verdict are derived by the rules engine; the
// stored numeric values are never rounded.
type MeasurementRow struct {
	Frequency    float64
	SR           string
	Polarization string
	Correction   *float64
	Measurement  *float64
	Limit        *float64
	Margin       *float64
	Verdict      Verdict
}

// Section is one detector category (CISPR.AVG, Q-Peak, Peak) within a
// configuration. Rows keep their order of appearance in the source.
type Section struct {
	Name string
	Rows []MeasurementRow
}

// Parameter is one key/value test parameter attached to a configuration.
type Parameter struct {
	Key   string
	Value string
}

// Configuration is a named test setup belonging to exactly one sample
// group. Sections keep first-seen order.
type Configuration struct {
	Name       string
	Parameters []Parameter
	Sections   []Section
}

// Empty reports whether the configuration contains no extracted rows.
// Empty configurations are retained so output reflects the source.
func (c *Configuration) Empty() bool {
	for i := range c.Sections {
		if len(c.Sections[i].Rows) > 0 {
			return false
		}
	}
	return true
}

// Parameter returns the value for key, or "" when absent.
func (c *Configuration) Parameter(key string) string {
	for _, p := range c.Parameters {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Fingerprint identifies the configuration's parameter set. Keys are
// sorted and joined so the identity does not depend on the order the
// parameters appeared in. Two configurations are the same setup exactly
// when their fingerprints are equal.
func (c *Configuration) Fingerprint() string {
	pairs := make([]string, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		pairs = append(pairs, p.Key+"="+strings.Join(strings.Fields(p.Value), " "))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}

// RowCount returns the total number of measurement rows.
func (c *Configuration) RowCount() int {
	n := 0
	for i := range c.Sections {
		n += len(c.Sections[i].Rows)
	}
	return n
}

// SampleGroup holds every configuration observed for one physical unit
// under test, identified by its Sample ID.
type SampleGroup struct {
	ID             string
	Configurations []Configuration
}

// Report is the finalized hierarchy extracted from one raw document.
// It is built once by the extractor and read-only afterward; the
// composer and the tabular exporters only traverse it.
type Report struct {
	Source  string
	Samples []SampleGroup
}

// RowCount returns the total number of measurement rows in the report.
func (r *Report) RowCount() int {
	n := 0
	for i := range r.Samples {
		for j := range r.Samples[i].Configurations {
			n += r.Samples[i].Configurations[j].RowCount()
		}
	}
	return n
}

// VerdictCounts tallies rows by verdict across the whole report.
func (r *Report) VerdictCounts() (pass, fail, incomplete int) {
	for i := range r.Samples {
		for j := range r.Samples[i].Configurations {
			for k := range r.Samples[i].Configurations[j].Sections {
				for _, row := range r.Samples[i].Configurations[j].Sections[k].Rows {
					switch row.Verdict {
					case VerdictPass:
						pass++
					case VerdictFail:
						fail++
					case VerdictIncomplete:
						incomplete++
					}
				}
			}
		}
	}
	return pass, fail, incomplete
}
