// Package report builds the measurement hierarchy (sample group →
// configuration → section → row) from the scanner's classified event
// stream. The hierarchy is assembled through an explicit builder that
// closes and opens nodes on each context transition, and is immutable
// once extraction finishes.
package report

import (
	"fmt"
	"strings"

	"emicli/internal/docscan"
	pipeerrors "emicli/internal/errors"
	"emicli/internal/normalize"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

// Extractor consumes classified events and maintains the current
// sample/configuration/section context while appending rows.
type Extractor struct {
	cfg rules.Config
}

// NewExtractor creates an extractor for the given rule configuration.
func NewExtractor(cfg rules.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract builds the finalized hierarchy from the event stream.
// Row-level problems (orphan rows, unparseable cells, incomplete rows)
// are recorded on the issue report and never abort the document.
func (e *Extractor) Extract(source string, events []docscan.Event, issues *pipeerrors.IssueReport) *domain.Report {
	b := &builder{
		cfg:       e.cfg,
		issues:    issues,
		report:    &domain.Report{Source: source},
		sampleIdx: make(map[string]int),
		curSample: -1, curConfig: -1, curSection: -1,
	}

	for _, ev := range events {
		switch ev.Kind {
		case docscan.EventParameterLine:
			b.parameter(ev.Key, ev.Value)
		case docscan.EventSectionMarker:
			b.section(ev.Name)
		case docscan.EventDataRow:
			b.dataRow(ev.Cells)
		}
	}

	return b.report
}

// builder holds the open node of each hierarchy level as indices into
// the report, so context transitions are explicit close/open steps
// rather than ambient state mutated across the whole scan.
type builder struct {
	cfg    rules.Config
	issues *pipeerrors.IssueReport
	report *domain.Report

	sampleIdx  map[string]int
	curSample  int
	curConfig  int
	curSection int

	// pending holds parameters seen before the first sample group opens;
	// they are attached to the first configuration created.
	pending []domain.Parameter
}

func (b *builder) sample() *domain.SampleGroup {
	if b.curSample < 0 {
		return nil
	}
	return &b.report.Samples[b.curSample]
}

func (b *builder) config() *domain.Configuration {
	s := b.sample()
	if s == nil || b.curConfig < 0 {
		return nil
	}
	return &s.Configurations[b.curConfig]
}

// parameter routes one parameter line. "Name test" values carry both
// the sample identity and the configuration name as SAMPLE_CONFIG;
// "Sample ID" opens or resumes a sample group; everything else
// accumulates into the current configuration's parameter set.
func (b *builder) parameter(key, value string) {
	switch key {
	case "Name test":
		sampleID, configName := splitNameTest(value)
		b.openSample(sampleID)
		if c := b.config(); c != nil && c.Parameter(key) == value {
			return // same setup re-listed, continuation
		}
		b.openConfig(configName, []domain.Parameter{{Key: key, Value: value}})
	case "Sample ID":
		b.openSample(value)
		b.setParam(key, value)
	default:
		if b.curSample < 0 {
			b.pending = append(b.pending, domain.Parameter{Key: key, Value: value})
			return
		}
		b.setParam(key, value)
	}
}

// openSample starts a new sample group or resumes the one already seen
// with this ID; first-seen order is preserved either way.
func (b *builder) openSample(id string) {
	id = normalize.CleanText(id)
	if idx, ok := b.sampleIdx[id]; ok {
		if idx != b.curSample {
			b.curSample = idx
			// Resuming a sample: point at its latest configuration.
			b.curConfig = len(b.report.Samples[idx].Configurations) - 1
			b.curSection = -1
		}
		return
	}
	b.report.Samples = append(b.report.Samples, domain.SampleGroup{ID: id})
	b.sampleIdx[id] = len(b.report.Samples) - 1
	b.curSample = len(b.report.Samples) - 1
	b.curConfig = -1
	b.curSection = -1
}

// openConfig closes the current configuration and opens a new one under
// the current sample, seeded with the given parameters plus anything
// buffered before the first sample appeared.
func (b *builder) openConfig(name string, params []domain.Parameter) {
	s := b.sample()
	if s == nil {
		return
	}
	if name == "" {
		name = fmt.Sprintf("Configuration %d", len(s.Configurations)+1)
	}
	params = append(b.pending, params...)
	b.pending = nil
	s.Configurations = append(s.Configurations, domain.Configuration{
		Name:       name,
		Parameters: params,
	})
	b.curConfig = len(s.Configurations) - 1
	b.curSection = -1
}

// setParam accumulates a parameter into the current configuration.
// A conflicting value for an already-known key changes the parameter
// fingerprint, which starts a new configuration inheriting the previous
// parameter set with the new value applied. Adding a previously unseen
// key, or repeating an identical value, is accumulation and does not
// open a new configuration.
func (b *builder) setParam(key, value string) {
	c := b.config()
	if c == nil {
		b.openConfig("", []domain.Parameter{{Key: key, Value: value}})
		return
	}
	existing := c.Parameter(key)
	switch existing {
	case "":
		c.Parameters = append(c.Parameters, domain.Parameter{Key: key, Value: value})
	case value:
		// unchanged, continuation
	default:
		inherited := make([]domain.Parameter, 0, len(c.Parameters))
		for _, p := range c.Parameters {
			if p.Key == key {
				p.Value = value
			}
			inherited = append(inherited, p)
		}
		// The inherited "Name test" still names the setup; keep the
		// sub-heading meaningful instead of numbering the split.
		var name string
		if nt := c.Parameter("Name test"); nt != "" {
			_, name = splitNameTest(nt)
		}
		b.openConfig(name, inherited)
	}
}

// section opens (or re-opens) a section under the current configuration.
// A marker naming an already-present section is a continuation, not a
// duplicate.
func (b *builder) section(name string) {
	if b.curSample < 0 {
		b.issues.Add(pipeerrors.Issue{
			Kind:   pipeerrors.IssueDiscardedLine,
			Detail: fmt.Sprintf("section marker %q before any sample group", name),
		})
		return
	}
	if b.config() == nil {
		b.openConfig("", nil)
	}
	c := b.config()
	for i := range c.Sections {
		if c.Sections[i].Name == name {
			b.curSection = i
			return
		}
	}
	c.Sections = append(c.Sections, domain.Section{Name: name})
	b.curSection = len(c.Sections) - 1
}

// dataRow parses a classified data row into a MeasurementRow under the
// current section. Rows arriving before any section are orphans; rows
// with unparseable numeric cells are dropped; rows missing measurement
// or limit are kept and noticed as incomplete.
func (b *builder) dataRow(cells []string) {
	c := b.config()
	if c == nil || b.curSection < 0 {
		b.issues.Add(pipeerrors.Issue{
			Kind:          pipeerrors.IssueOrphanRow,
			Detail:        fmt.Sprintf("data row outside any section: %q", strings.Join(cells, " | ")),
			Sample:        b.sampleID(),
			Configuration: b.configName(),
		})
		return
	}
	sec := &c.Sections[b.curSection]

	row, err := b.parseRow(cells)
	if err != nil {
		b.issues.Add(pipeerrors.Issue{
			Kind:          pipeerrors.IssueNumericParse,
			Detail:        err.Error(),
			Sample:        b.sampleID(),
			Configuration: b.configName(),
			Section:       sec.Name,
		})
		return
	}

	if row.Measurement == nil || row.Limit == nil {
		b.issues.Add(pipeerrors.Issue{
			Kind:          pipeerrors.IssueIncompleteRow,
			Detail:        fmt.Sprintf("row at %g MHz lacks measurement or limit", row.Frequency),
			Sample:        b.sampleID(),
			Configuration: b.configName(),
			Section:       sec.Name,
		})
	}

	sec.Rows = append(sec.Rows, row)
}

// parseRow maps positional cells to row fields per the configured
// column order.
func (b *builder) parseRow(cells []string) (domain.MeasurementRow, error) {
	var row domain.MeasurementRow
	for i, column := range b.cfg.Columns {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		switch column {
		case "frequency":
			v, err := normalize.ParseValue(cell)
			if err != nil {
				return row, fmt.Errorf("frequency: %w", err)
			}
			if v == nil {
				return row, fmt.Errorf("frequency cell is empty")
			}
			row.Frequency = *v
		case "sr":
			row.SR = normalize.CleanText(cell)
		case "polarization":
			row.Polarization = normalize.CleanText(cell)
		case "correction":
			v, err := normalize.ParseValue(cell)
			if err != nil {
				return row, fmt.Errorf("correction: %w", err)
			}
			row.Correction = v
		case "measurement":
			v, err := normalize.ParseValue(cell)
			if err != nil {
				return row, fmt.Errorf("measurement: %w", err)
			}
			row.Measurement = v
		case "limit":
			v, err := normalize.ParseValue(cell)
			if err != nil {
				return row, fmt.Errorf("limit: %w", err)
			}
			row.Limit = v
		}
	}
	return row, nil
}

func (b *builder) sampleID() string {
	if s := b.sample(); s != nil {
		return s.ID
	}
	return ""
}

func (b *builder) configName() string {
	if c := b.config(); c != nil {
		return c.Name
	}
	return ""
}

// splitNameTest separates a "Name test" value into the sample ID (the
// part before the first underscore) and the configuration name (the
// remainder), the layout the lab software emits.
func splitNameTest(value string) (sampleID, configName string) {
	value = normalize.CleanText(value)
	before, after, found := strings.Cut(value, "_")
	if !found {
		return value, ""
	}
	return before, after
}
