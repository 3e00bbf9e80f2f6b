package docscan

import (
	"fmt"
	"strings"

	pipeerrors "emicli/internal/errors"
	"emicli/internal/normalize"
	"emicli/internal/rules"
)

// EventKind classifies one line of the source document.
type EventKind int

const (
	// EventParameterLine is a recognized key/value test parameter.
	EventParameterLine EventKind = iota
	// EventSectionMarker opens a measurement section (detector type).
	EventSectionMarker
	// EventDataRow is one measurement row's raw cells.
	EventDataRow
)

// Event is one classified line from the document, in document order.
type Event struct {
	Kind  EventKind
	Key   string   // parameter key (canonical), for EventParameterLine
	Value string   // parameter value, for EventParameterLine
	Name  string   // canonical section name, for EventSectionMarker
	Cells []string // raw cells, for EventDataRow
}

// Scanner classifies document blocks against the configured vocabulary.
// It is stateless between documents; unclassifiable table rows are
// recorded on the issue report and skipped.
type Scanner struct {
	cfg rules.Config
}

// NewScanner creates a scanner for the given rule configuration.
func NewScanner(cfg rules.Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan classifies every block into events. Paragraph text only ever
// yields parameter lines; narrative paragraphs are skipped silently
// since prose between tables is normal. Table rows that match nothing
// are counted as discarded lines on the report.
func (s *Scanner) Scan(blocks []Block, report *pipeerrors.IssueReport) []Event {
	var events []Event

	for _, block := range blocks {
		switch block.Kind {
		case BlockParagraph:
			if ev, ok := s.classifyText(block.Text); ok {
				events = append(events, ev)
			}
		case BlockTable:
			for _, cells := range block.Rows {
				ev, ok := s.classifyRow(cells)
				if !ok {
					report.Add(pipeerrors.Issue{
						Kind:   pipeerrors.IssueDiscardedLine,
						Detail: fmt.Sprintf("unclassified row %q", strings.Join(cells, " | ")),
					})
					continue
				}
				events = append(events, ev)
			}
		}
	}

	return events
}

// classifyRow applies the classification order from the vocabulary:
// parameter line, then section marker, then data row.
func (s *Scanner) classifyRow(cells []string) (Event, bool) {
	if ev, ok := s.matchParameter(cells); ok {
		return ev, true
	}
	if name, ok := s.matchSection(cells); ok {
		return Event{Kind: EventSectionMarker, Name: name}, true
	}
	if s.isDataRow(cells) {
		cleaned := make([]string, len(cells))
		for i, c := range cells {
			cleaned[i] = normalize.CleanText(normalize.CanonicalUnit(c))
		}
		return Event{Kind: EventDataRow, Cells: cleaned}, true
	}
	return Event{}, false
}

// classifyText classifies paragraph text, which can only carry a
// "Key: Value" parameter. Detector sections come exclusively from
// measurement-table header rows; prose mentioning a detector name is
// narrative, not a marker.
func (s *Scanner) classifyText(text string) (Event, bool) {
	if key, value, ok := s.splitParameter(text); ok {
		return Event{Kind: EventParameterLine, Key: key, Value: value}, true
	}
	return Event{}, false
}

// matchParameter recognizes the two shapes parameter rows take in raw
// documents: key in the first cell with the value in the second, or
// "Key: Value" collapsed into a single cell.
func (s *Scanner) matchParameter(cells []string) (Event, bool) {
	if len(cells) == 0 || len(cells) > 4 {
		return Event{}, false
	}

	first := normalize.CleanText(cells[0])

	// Two-column form: cell[0] is the key, first non-empty later cell
	// is the value.
	if key, ok := s.parameterKey(first); ok {
		for _, c := range cells[1:] {
			if value := normalize.CleanText(c); value != "" {
				return Event{Kind: EventParameterLine, Key: key, Value: value}, true
			}
		}
		// Key cell may itself hold "Key: Value".
		if key, value, ok := s.splitParameter(first); ok {
			return Event{Kind: EventParameterLine, Key: key, Value: value}, true
		}
		return Event{}, false
	}

	// Single-cell form.
	if key, value, ok := s.splitParameter(first); ok {
		return Event{Kind: EventParameterLine, Key: key, Value: value}, true
	}
	return Event{}, false
}

// splitParameter parses "Key: Value" text when the key is recognized.
func (s *Scanner) splitParameter(text string) (key, value string, ok bool) {
	before, after, found := strings.Cut(text, ":")
	if !found {
		return "", "", false
	}
	canonical, ok := s.parameterKey(before)
	if !ok {
		return "", "", false
	}
	value = normalize.CleanText(after)
	if value == "" {
		return "", "", false
	}
	return canonical, value, true
}

// parameterKey resolves a raw key cell to its canonical parameter name.
func (s *Scanner) parameterKey(raw string) (string, bool) {
	k := strings.TrimSuffix(normalize.Header(raw), ":")
	k = normalize.CleanText(k)
	if k == "" {
		return "", false
	}
	for _, pk := range s.cfg.ParameterKeys {
		if strings.Contains(k, pk.Token) {
			return pk.Name, true
		}
	}
	return "", false
}

// matchSection recognizes a section marker row: a header row naming a
// detector type, or a row whose only content is the vocabulary token.
// Rows holding numeric cells are measurements, never markers.
func (s *Scanner) matchSection(cells []string) (string, bool) {
	for _, c := range cells {
		if normalize.Numeric(c) {
			return "", false
		}
	}
	return s.sectionName(strings.Join(cells, " "))
}

// sectionName scans text for the configured vocabulary tokens, which
// are ordered most-specific first so "q-peak" wins over "peak". The
// text is squashed (spaces removed) so "CISPR . AVG" still matches.
func (s *Scanner) sectionName(text string) (string, bool) {
	h := strings.ReplaceAll(normalize.Header(text), " ", "")
	for _, st := range s.cfg.Sections {
		if strings.Contains(h, st.Token) {
			return st.Name, true
		}
	}
	return "", false
}

// isDataRow requires the expected column count and at least one
// numeric-looking cell.
func (s *Scanner) isDataRow(cells []string) bool {
	if len(cells) < s.cfg.MinColumns {
		return false
	}
	for _, c := range cells {
		if normalize.Numeric(c) {
			return true
		}
	}
	return false
}
