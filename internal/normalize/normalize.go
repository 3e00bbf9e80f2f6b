// Package normalize standardizes the raw string fields read from report
// tables before any numeric interpretation: decimal separators, malformed
// unit spellings, and whitespace or encoding artifacts left by the lab
// software. It never alters which row or section a value belongs to.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// unitPattern matches the spellings of dBµV/m that show up in raw
// documents: the micro sign, greek mu, a plain "u", the HTML entity,
// or the replacement character produced by a bad encoding round trip.
var unitPattern = regexp.MustCompile(`(?i)dB\s*(?:µ|μ|u|\x{FFFD}|&micro;)\s*V\s*/\s*m`)

// numberPattern extracts the leading numeric token from a cleaned cell,
// tolerating a trailing unit ("45.3 dBµV/m").
var numberPattern = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?`)

var textReplacer = strings.NewReplacer(
	"\u00A0", " ", // no-break space
	"\u200B", "", // zero-width space
	"\uFEFF", "", // byte order mark
	"\t", " ",
	"\r", " ",
	"\n", " ",
)

// CleanText removes non-printing characters and collapses whitespace runs.
func CleanText(s string) string {
	return strings.Join(strings.Fields(textReplacer.Replace(s)), " ")
}

// CanonicalUnit collapses every malformed variant of the field-strength
// unit to the single canonical spelling dBµV/m.
func CanonicalUnit(s string) string {
	return unitPattern.ReplaceAllString(s, "dBµV/m")
}

// CleanDecimal prepares a cell for numeric parsing: whitespace cleanup,
// comma decimal separators to points, and embedded grouping spaces
// removed ("1 234,5" becomes "1234.5").
func CleanDecimal(s string) string {
	s = CleanText(s)
	s = strings.ReplaceAll(s, ",", ".")
	compact := strings.ReplaceAll(s, " ", "")
	if numberPattern.MatchString(compact) {
		return compact
	}
	return s
}

// Header normalizes a column header for recognition: lowercased, unit
// spelling canonicalized, whitespace collapsed.
func Header(s string) string {
	return strings.ToLower(CleanText(CanonicalUnit(s)))
}

// Missing reports whether a cell is deliberately empty in the source
// ("" or a dash placeholder) rather than a value that failed to parse.
func Missing(s string) bool {
	switch CleanText(s) {
	case "", "-", "–", "—":
		return true
	}
	return false
}

// ParseValue interprets a cell as an optional number. A missing cell
// yields (nil, nil). A present cell that cannot be read as a number
// yields a non-nil error so the caller can drop the row with a warning.
func ParseValue(s string) (*float64, error) {
	if Missing(s) {
		return nil, nil
	}
	cleaned := CleanDecimal(s)
	token := numberPattern.FindString(cleaned)
	if token == "" {
		return nil, &ParseError{Cell: s}
	}
	// Reject cells like "12abc" where the remainder is not a unit.
	rest := strings.TrimSpace(cleaned[len(token):])
	if rest != "" && !looksLikeUnit(rest) {
		return nil, &ParseError{Cell: s}
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil, &ParseError{Cell: s}
	}
	return &v, nil
}

// Numeric reports whether the cell holds a parseable number.
func Numeric(s string) bool {
	v, err := ParseValue(s)
	return err == nil && v != nil
}

func looksLikeUnit(s string) bool {
	switch strings.ToLower(CanonicalUnit(s)) {
	case "dbµv/m", "db", "mhz", "khz", "ghz", "hz":
		return true
	}
	return false
}

// ParseError reports a cell that could not be normalized into a number.
type ParseError struct {
	Cell string
}

func (e *ParseError) Error() string {
	return "cannot parse numeric cell " + strconv.Quote(e.Cell)
}
