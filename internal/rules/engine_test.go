package rules

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emicli/pkg/contracts/domain"
)

func f(v float64) *float64 { return &v }

func TestEngine_Apply(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	tests := []struct {
		name        string
		measurement *float64
		limit       *float64
		wantMargin  *float64
		wantVerdict domain.Verdict
	}{
		{"comfortable pass", f(30.5), f(40.0), f(9.5), domain.VerdictPass},
		{"zero margin passes", f(40.0), f(40.0), f(0.0), domain.VerdictPass},
		{"fail", f(45.25), f(40.0), f(-5.25), domain.VerdictFail},
		{"missing measurement", nil, f(40.0), nil, domain.VerdictIncomplete},
		{"missing limit", f(30.5), nil, nil, domain.VerdictIncomplete},
		{"both missing", nil, nil, nil, domain.VerdictIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := domain.MeasurementRow{
				Frequency:   30.0,
				Measurement: tt.measurement,
				Limit:       tt.limit,
			}
			eng.Apply(&row)

			assert.Equal(t, tt.wantVerdict, row.Verdict)
			if tt.wantMargin == nil {
				assert.Nil(t, row.Margin)
			} else {
				require.NotNil(t, row.Margin)
				assert.InDelta(t, *tt.wantMargin, *row.Margin, 1e-12)
			}
		})
	}
}

func TestEngine_MarginIdentity(t *testing.T) {
	// margin == limit − measurement exactly, for every verdict.
	eng := NewEngine(DefaultConfig())
	for _, pair := range [][2]float64{
		{33.17, 40.0}, {40.0, 40.0}, {52.9, 40.0}, {-3.5, 0.0},
	} {
		row := domain.MeasurementRow{Measurement: f(pair[0]), Limit: f(pair[1])}
		eng.Apply(&row)
		require.NotNil(t, row.Margin)
		assert.Equal(t, pair[1]-pair[0], *row.Margin)
		assert.Equal(t, *row.Margin >= 0, row.Verdict == domain.VerdictPass)
	}
}

func TestEngine_FormatFrequency(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	tests := []struct {
		mhz  float64
		want string
	}{
		{0.15, "0.15000"},
		{9.999999, "10.00000"}, // still below the 10 MHz break, 5 decimals
		{10.0, "10.000"},
		{30.000125, "30.000"},
		{230.5, "230.500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, eng.FormatFrequency(tt.mhz))
		})
	}
}

func TestEngine_FormattingIdempotent(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	for _, v := range []float64{0.15, 9.5, 10.0, 120.333} {
		once := eng.FormatFrequency(v)
		reparsed, err := strconv.ParseFloat(once, 64)
		require.NoError(t, err)
		assert.Equal(t, once, eng.FormatFrequency(reparsed))
	}

	for _, v := range []float64{0.0, -5.25, 40.0, 13.4} {
		once := eng.FormatDB(v)
		reparsed, err := strconv.ParseFloat(once, 64)
		require.NoError(t, err)
		assert.Equal(t, once, eng.FormatDB(reparsed))
	}
}

func TestEngine_FormatDB(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	assert.Equal(t, "13.40", eng.FormatDB(13.4))
	assert.Equal(t, "-5.25", eng.FormatDB(-5.25))
	assert.Equal(t, "0.00", eng.FormatDB(0))
	assert.Equal(t, "-", eng.FormatOptionalDB(nil))
	assert.Equal(t, "40.00", eng.FormatOptionalDB(f(40)))
}

func TestEngine_VerdictRoundTrip(t *testing.T) {
	// Re-parsing formatted measurement and limit and recomputing must
	// reproduce the verdict up to formatting precision.
	eng := NewEngine(DefaultConfig())

	row := domain.MeasurementRow{Measurement: f(39.994), Limit: f(40.0)}
	eng.Apply(&row)
	require.Equal(t, domain.VerdictPass, row.Verdict)

	m, err := strconv.ParseFloat(eng.FormatDB(*row.Measurement), 64)
	require.NoError(t, err)
	l, err := strconv.ParseFloat(eng.FormatDB(*row.Limit), 64)
	require.NoError(t, err)

	reparsed := domain.MeasurementRow{Measurement: &m, Limit: &l}
	eng.Apply(&reparsed)
	assert.Equal(t, row.Verdict, reparsed.Verdict)
}

func TestEngine_Summarize(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	cfg := domain.Configuration{
		Name: "ER_In front of harness RBW 9kHz",
		Sections: []domain.Section{
			{Name: "Peak", Rows: []domain.MeasurementRow{
				{Verdict: domain.VerdictPass},
				{Verdict: domain.VerdictFail},
				{Verdict: domain.VerdictPass},
			}},
			{Name: "CISPR.AVG", Rows: []domain.MeasurementRow{
				{Verdict: domain.VerdictPass},
			}},
		},
	}

	summaries, global := eng.Summarize(&cfg)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Peak", summaries[0].Section)
	assert.Equal(t, 3, summaries[0].Rows)
	assert.Equal(t, 1, summaries[0].Failures)
	assert.Equal(t, domain.VerdictFail, summaries[0].Verdict)

	assert.Equal(t, "CISPR.AVG", summaries[1].Section)
	assert.Equal(t, 0, summaries[1].Failures)
	assert.Equal(t, domain.VerdictPass, summaries[1].Verdict)

	assert.Equal(t, domain.VerdictFail, global)
}

func TestEngine_SummarizeAllPass(t *testing.T) {
	eng := NewEngine(DefaultConfig())

	cfg := domain.Configuration{
		Sections: []domain.Section{
			{Name: "Q-Peak", Rows: []domain.MeasurementRow{
				{Verdict: domain.VerdictPass},
				{Verdict: domain.VerdictIncomplete},
			}},
		},
	}

	_, global := eng.Summarize(&cfg)
	assert.Equal(t, domain.VerdictPass, global)
}
