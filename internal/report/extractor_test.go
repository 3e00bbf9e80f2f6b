package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emicli/internal/docscan"
	pipeerrors "emicli/internal/errors"
	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

func param(key, value string) docscan.Event {
	return docscan.Event{Kind: docscan.EventParameterLine, Key: key, Value: value}
}

func marker(name string) docscan.Event {
	return docscan.Event{Kind: docscan.EventSectionMarker, Name: name}
}

func dataRow(cells ...string) docscan.Event {
	return docscan.Event{Kind: docscan.EventDataRow, Cells: cells}
}

func extract(t *testing.T, events []docscan.Event) (*domain.Report, *pipeerrors.IssueReport) {
	t.Helper()
	var issues pipeerrors.IssueReport
	rep := NewExtractor(rules.DefaultConfig()).Extract("raw01.docx", events, &issues)
	return rep, &issues
}

func TestExtract_SingleConfiguration(t *testing.T) {
	rep, issues := extract(t, []docscan.Event{
		param("Name test", "CRE2-2025-TP002-02_ER_In front of harness RBW 9kHz"),
		param("Operator", "NDN/WD"),
		marker("Peak"),
		dataRow("30,000125", "1", "Horizontal", "12,1", "33,17", "40,00"),
		dataRow("45,5", "1", "Vertical", "12,1", "42,80", "40,00"),
	})

	require.Len(t, rep.Samples, 1)
	sample := rep.Samples[0]
	assert.Equal(t, "CRE2-2025-TP002-02", sample.ID)

	require.Len(t, sample.Configurations, 1)
	cfg := sample.Configurations[0]
	assert.Equal(t, "ER_In front of harness RBW 9kHz", cfg.Name)
	assert.Equal(t, "NDN/WD", cfg.Parameter("Operator"))
	assert.False(t, cfg.Empty())

	require.Len(t, cfg.Sections, 1)
	sec := cfg.Sections[0]
	assert.Equal(t, "Peak", sec.Name)
	require.Len(t, sec.Rows, 2)

	row := sec.Rows[0]
	assert.InDelta(t, 30.000125, row.Frequency, 1e-12)
	assert.Equal(t, "1", row.SR)
	assert.Equal(t, "Horizontal", row.Polarization)
	require.NotNil(t, row.Correction)
	assert.InDelta(t, 12.1, *row.Correction, 1e-12)
	require.NotNil(t, row.Measurement)
	assert.InDelta(t, 33.17, *row.Measurement, 1e-12)
	require.NotNil(t, row.Limit)
	assert.InDelta(t, 40.0, *row.Limit, 1e-12)

	assert.Empty(t, issues.Issues)
}

func TestExtract_SectionOrderPreserved(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		marker("CISPR.AVG"),
		dataRow("30,0", "1", "H", "0", "25,0", "30,0"),
		marker("Q-Peak"),
		dataRow("30,0", "1", "H", "0", "28,0", "35,0"),
	})

	require.Len(t, rep.Samples, 1)
	require.Len(t, rep.Samples[0].Configurations, 1)
	sections := rep.Samples[0].Configurations[0].Sections
	require.Len(t, sections, 3)
	assert.Equal(t, "Peak", sections[0].Name)
	assert.Equal(t, "CISPR.AVG", sections[1].Name)
	assert.Equal(t, "Q-Peak", sections[2].Name)
}

func TestExtract_SectionContinuation(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		marker("CISPR.AVG"),
		dataRow("30,0", "1", "H", "0", "25,0", "30,0"),
		marker("Peak"), // re-opens the existing Peak section
		dataRow("50,0", "1", "V", "0", "35,0", "40,0"),
	})

	sections := rep.Samples[0].Configurations[0].Sections
	require.Len(t, sections, 2)
	assert.Equal(t, "Peak", sections[0].Name)
	assert.Len(t, sections[0].Rows, 2)
	assert.Equal(t, "CISPR.AVG", sections[1].Name)
	assert.Len(t, sections[1].Rows, 1)
}

func TestExtract_OrphanRowDropped(t *testing.T) {
	rep, issues := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"), // before any section
		marker("Peak"),
		dataRow("45,0", "1", "H", "0", "36,0", "40,0"),
	})

	assert.Equal(t, 1, issues.Count(pipeerrors.IssueOrphanRow))
	require.Len(t, rep.Samples[0].Configurations[0].Sections, 1)
	assert.Len(t, rep.Samples[0].Configurations[0].Sections[0].Rows, 1)
}

func TestExtract_UnparseableCellDropsRowOnly(t *testing.T) {
	rep, issues := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "N/A", "40,0"), // bad measurement
		dataRow("45,0", "1", "H", "0", "36,0", "40,0"),
	})

	assert.Equal(t, 1, issues.Count(pipeerrors.IssueNumericParse))
	rows := rep.Samples[0].Configurations[0].Sections[0].Rows
	require.Len(t, rows, 1)
	assert.InDelta(t, 45.0, rows[0].Frequency, 1e-12)
}

func TestExtract_IncompleteRowRetained(t *testing.T) {
	rep, issues := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "-", "40,0"), // missing measurement
	})

	assert.Equal(t, 1, issues.Count(pipeerrors.IssueIncompleteRow))
	rows := rep.Samples[0].Configurations[0].Sections[0].Rows
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].Measurement)
	require.NotNil(t, rows[0].Limit)
}

func TestExtract_NewConfigurationOnNameTest(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		param("Name test", "S1_Config B"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "35,0", "40,0"),
	})

	require.Len(t, rep.Samples, 1)
	cfgs := rep.Samples[0].Configurations
	require.Len(t, cfgs, 2)
	assert.Equal(t, "Config A", cfgs[0].Name)
	assert.Equal(t, "Config B", cfgs[1].Name)
	assert.NotEqual(t, cfgs[0].Fingerprint(), cfgs[1].Fingerprint())
}

func TestExtract_RepeatedNameTestIsContinuation(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		param("Name test", "S1_Config A"), // same setup re-listed
		marker("CISPR.AVG"),
		dataRow("30,0", "1", "H", "0", "25,0", "30,0"),
	})

	require.Len(t, rep.Samples[0].Configurations, 1)
	assert.Len(t, rep.Samples[0].Configurations[0].Sections, 2)
}

func TestExtract_ParameterConflictStartsNewConfiguration(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Sample ID", "S1"),
		param("RBW", "9 kHz"),
		param("Antenna", "Biconical"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		param("RBW", "120 kHz"), // changed fingerprint
		marker("Peak"),
		dataRow("230,0", "1", "H", "0", "38,0", "40,0"),
	})

	cfgs := rep.Samples[0].Configurations
	require.Len(t, cfgs, 2)
	assert.Equal(t, "9 kHz", cfgs[0].Parameter("RBW"))
	assert.Equal(t, "120 kHz", cfgs[1].Parameter("RBW"))
	// The unchanged parameter is inherited.
	assert.Equal(t, "Biconical", cfgs[1].Parameter("Antenna"))
	assert.NotEqual(t, cfgs[0].Fingerprint(), cfgs[1].Fingerprint())
	// Without a "Name test" parameter the split falls back to numbering.
	assert.Equal(t, "Configuration 2", cfgs[1].Name)
}

func TestExtract_ParameterConflictKeepsSetupName(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_ER_In front of harness RBW 9kHz"),
		param("RBW", "9 kHz"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		param("RBW", "120 kHz"), // changed fingerprint
	})

	cfgs := rep.Samples[0].Configurations
	require.Len(t, cfgs, 2)
	// The split inherits the "Name test" value, so the new configuration
	// carries the setup's name rather than an auto-generated one.
	assert.Equal(t, "ER_In front of harness RBW 9kHz", cfgs[1].Name)
	assert.Equal(t, "S1_ER_In front of harness RBW 9kHz", cfgs[1].Parameter("Name test"))
	assert.Equal(t, "120 kHz", cfgs[1].Parameter("RBW"))
}

func TestExtract_SampleGroupResumes(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
		param("Name test", "S2_Config A"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "31,0", "40,0"),
		param("Name test", "S1_Config B"), // back to the first sample
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "35,0", "40,0"),
	})

	require.Len(t, rep.Samples, 2)
	assert.Equal(t, "S1", rep.Samples[0].ID)
	assert.Equal(t, "S2", rep.Samples[1].ID)
	assert.Len(t, rep.Samples[0].Configurations, 2)
	assert.Len(t, rep.Samples[1].Configurations, 1)
}

func TestExtract_EmptyConfigurationRetained(t *testing.T) {
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		param("Name test", "S1_Config B"),
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
	})

	cfgs := rep.Samples[0].Configurations
	require.Len(t, cfgs, 2)
	assert.True(t, cfgs[0].Empty())
	assert.False(t, cfgs[1].Empty())
}

func TestExtract_SectionBeforeSampleDiscarded(t *testing.T) {
	rep, issues := extract(t, []docscan.Event{
		marker("Peak"),
		dataRow("30,0", "1", "H", "0", "33,0", "40,0"),
	})

	assert.Empty(t, rep.Samples)
	assert.Equal(t, 1, issues.Count(pipeerrors.IssueDiscardedLine))
	assert.Equal(t, 1, issues.Count(pipeerrors.IssueOrphanRow))
}

func TestExtract_VerdictScenario(t *testing.T) {
	// One sample, one configuration, one section, three rows: two pass,
	// one fails, margins computed as limit − measurement.
	rep, _ := extract(t, []docscan.Event{
		param("Name test", "S1_Config A"),
		marker("Q-Peak"),
		dataRow("30,0", "1", "H", "0", "33,00", "40,00"),
		dataRow("45,0", "1", "H", "0", "39,50", "40,00"),
		dataRow("60,0", "1", "H", "0", "42,75", "40,00"),
	})

	eng := rules.NewEngine(rules.DefaultConfig())
	eng.ApplyReport(rep)

	pass, fail, incomplete := rep.VerdictCounts()
	assert.Equal(t, 2, pass)
	assert.Equal(t, 1, fail)
	assert.Equal(t, 0, incomplete)

	rows := rep.Samples[0].Configurations[0].Sections[0].Rows
	require.NotNil(t, rows[2].Margin)
	assert.InDelta(t, -2.75, *rows[2].Margin, 1e-9)
	assert.Equal(t, domain.VerdictFail, rows[2].Verdict)
}
