package rules

// SectionToken maps a vocabulary token found in the document to the
// canonical section name used in every output. Tokens are matched in
// order, so more specific tokens (q-peak) must precede the ones they
// contain (peak).
type SectionToken struct {
	Token string
	Name  string
}

// ParameterKey maps a recognized key token to its canonical parameter
// name. Matching is substring-based on the normalized key text, which
// tolerates the punctuation and casing drift seen in raw documents.
type ParameterKey struct {
	Token string
	Name  string
}

// Config carries every business rule the pipeline applies: the section
// vocabulary, parameter recognition, data-row column order, display
// precision, and composer styling. It is passed explicitly into the
// scanner, rules engine, composer and exporters so the pipeline can be
// reused with an alternate vocabulary without touching extraction logic.
type Config struct {
	Sections      []SectionToken
	ParameterKeys []ParameterKey

	// Columns names the positional meaning of data-row cells. Recognized
	// names: frequency, sr, polarization, correction, measurement, limit.
	// Cells beyond the configured columns are ignored.
	Columns    []string
	MinColumns int

	// Frequency display precision: FreqHighPrecision decimals below
	// FreqBreak MHz, FreqLowPrecision at or above it.
	FreqBreak         float64
	FreqHighPrecision int
	FreqLowPrecision  int
	// DBPrecision applies to every dB-valued field.
	DBPrecision int

	// Composer styling and signature.
	Candidate   string
	PassColor   string
	FailColor   string
	HeaderColor string
}

// DefaultConfig returns the standard EMI report vocabulary and the
// formatting rules used by the lab: 5 decimals below 10 MHz, 3 above,
// 2 decimals for dB values.
func DefaultConfig() Config {
	return Config{
		Sections: []SectionToken{
			{Token: "cispr.avg", Name: "CISPR.AVG"},
			{Token: "cispravg", Name: "CISPR.AVG"},
			{Token: "q-peak", Name: "Q-Peak"},
			{Token: "qpeak", Name: "Q-Peak"},
			{Token: "peak", Name: "Peak"},
		},
		ParameterKeys: []ParameterKey{
			{Token: "name test", Name: "Name test"},
			{Token: "sample id", Name: "Sample ID"},
			{Token: "sample", Name: "Sample ID"},
			{Token: "project", Name: "Project"},
			{Token: "operator", Name: "Operator"},
			{Token: "test configuration", Name: "Test Configuration"},
			{Token: "operating mode", Name: "Operating mode"},
			{Token: "conclusion", Name: "Conclusion"},
			{Token: "rbw", Name: "RBW"},
			{Token: "span", Name: "Span"},
			{Token: "reference level", Name: "Reference level"},
			{Token: "antenna", Name: "Antenna"},
			{Token: "polarization", Name: "Polarization"},
		},
		Columns: []string{
			"frequency", "sr", "polarization", "correction", "measurement", "limit",
		},
		MinColumns:        6,
		FreqBreak:         10.0,
		FreqHighPrecision: 5,
		FreqLowPrecision:  3,
		DBPrecision:       2,
		Candidate:         "Compliance Lab",
		PassColor:         "008000",
		FailColor:         "C80000",
		HeaderColor:       "4472C4",
	}
}
