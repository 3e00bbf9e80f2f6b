package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"emicli/internal/rules"
	"emicli/pkg/contracts/domain"
)

func f(v float64) *float64 { return &v }

// testReport builds a finalized two-configuration report, the second
// configuration deliberately empty.
func testReport(t *testing.T) *domain.Report {
	t.Helper()

	rep := &domain.Report{
		Source: "raw01.docx",
		Samples: []domain.SampleGroup{{
			ID: "CRE2-2025-TP002-02",
			Configurations: []domain.Configuration{
				{
					Name: "ER_In front of harness RBW 9kHz",
					Sections: []domain.Section{{
						Name: "Peak",
						Rows: []domain.MeasurementRow{
							{Frequency: 30.000125, SR: "1", Polarization: "Horizontal",
								Correction: f(12.1), Measurement: f(33.17), Limit: f(40)},
							{Frequency: 0.15, SR: "1", Polarization: "Vertical",
								Correction: f(12.1), Measurement: f(42.8), Limit: f(40)},
						},
					}},
				},
				{Name: "ER_Above harness RBW 9kHz"}, // no rows extracted
			},
		}},
	}

	eng := rules.NewEngine(rules.DefaultConfig())
	eng.ApplyReport(rep)
	return rep
}

func TestFlatten(t *testing.T) {
	eng := rules.NewEngine(rules.DefaultConfig())
	records := Flatten(testReport(t), eng)

	require.Len(t, records, 3)
	require.Len(t, Headers(), 11)
	for _, r := range records {
		assert.Len(t, r, len(Headers()))
	}

	assert.Equal(t, []string{
		"CRE2-2025-TP002-02", "ER_In front of harness RBW 9kHz", "Peak",
		"30.000", "1", "Horizontal", "12.10", "33.17", "40.00", "6.83", "PASS",
	}, records[0])

	// Below 10 MHz the frequency renders with 5 decimals.
	assert.Equal(t, "0.15000", records[1][3])
	assert.Equal(t, "FAIL", records[1][10])

	// The empty configuration keeps one marker row.
	assert.Equal(t, "ER_Above harness RBW 9kHz", records[2][1])
	assert.Equal(t, "NO DATA", records[2][2])
}

func TestFlatten_Deterministic(t *testing.T) {
	eng := rules.NewEngine(rules.DefaultConfig())
	rep := testReport(t)
	assert.Equal(t, Flatten(rep, eng), Flatten(rep, eng))
}

func TestCSVWriter_ExportReport(t *testing.T) {
	eng := rules.NewEngine(rules.DefaultConfig())
	path := filepath.Join(t.TempDir(), "reports", "Processed_RAW01.csv")

	require.NoError(t, NewCSVWriter(eng).ExportReport(testReport(t), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"), "expected UTF-8 BOM")

	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")))
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4) // header + 3 records
	assert.Equal(t, Headers(), rows[0])
	assert.Equal(t, "Mesure (dBµV/m)", rows[0][7])
	assert.Equal(t, "PASS", rows[1][10])
}

func TestExports_RowForRowIdentical(t *testing.T) {
	eng := rules.NewEngine(rules.DefaultConfig())
	rep := testReport(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "out.csv")
	xlsxPath := filepath.Join(dir, "out.xlsx")

	require.NoError(t, NewCSVWriter(eng).ExportReport(rep, csvPath))
	require.NoError(t, NewXLSXWriter(eng).ExportReport(rep, xlsxPath))

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	reader := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")))
	csvRows, err := reader.ReadAll()
	require.NoError(t, err)

	xf, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer xf.Close()
	xlsxRows, err := xf.GetRows(xlsxSheet)
	require.NoError(t, err)

	require.Equal(t, len(csvRows), len(xlsxRows))
	for i := range csvRows {
		assert.Equal(t, csvRows[i], xlsxRows[i], "row %d differs between encodings", i)
	}
}

func TestCSVWriter_Deterministic(t *testing.T) {
	eng := rules.NewEngine(rules.DefaultConfig())
	rep := testReport(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")
	require.NoError(t, NewCSVWriter(eng).ExportReport(rep, first))
	require.NoError(t, NewCSVWriter(eng).ExportReport(rep, second))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "reruns must produce byte-identical exports")
}
