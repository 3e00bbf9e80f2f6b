package errors

import (
	"fmt"
	"log/slog"
)

// IssueKind tags a recoverable, row-granular problem.
type IssueKind string

const (
	// IssueOrphanRow is a data row found outside any open section.
	// The row is dropped.
	IssueOrphanRow IssueKind = "orphan_row"
	// IssueNumericParse is a cell that could not be normalized into a
	// number. The row is dropped from rule computation.
	IssueNumericParse IssueKind = "numeric_parse"
	// IssueIncompleteRow is a retained row lacking measurement or limit.
	// It is emitted with no verdict; this is a notice, not an error.
	IssueIncompleteRow IssueKind = "incomplete_row"
	// IssueDiscardedLine is a table row that matched no classification.
	IssueDiscardedLine IssueKind = "discarded_line"
)

// Issue is one recoverable problem observed while processing a document,
// with enough context to locate it in the source hierarchy.
type Issue struct {
	Kind          IssueKind
	Detail        string
	Sample        string
	Configuration string
	Section       string
}

func (i Issue) String() string {
	where := i.Sample
	if i.Configuration != "" {
		where += "/" + i.Configuration
	}
	if i.Section != "" {
		where += "/" + i.Section
	}
	if where == "" {
		where = "(document)"
	}
	return fmt.Sprintf("%s at %s: %s", i.Kind, where, i.Detail)
}

// IssueReport accumulates every issue found in one document pass.
// Not safe for concurrent use; each document run owns its own report.
type IssueReport struct {
	Issues []Issue
}

// Add records an issue.
func (r *IssueReport) Add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// Count returns how many issues of the given kind were recorded.
func (r *IssueReport) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Log emits one warning record per issue on the given logger. Incomplete
// rows are informational, everything else is a warning.
func (r *IssueReport) Log(logger *slog.Logger) {
	for _, i := range r.Issues {
		attrs := []any{
			slog.String("kind", string(i.Kind)),
			slog.String("detail", i.Detail),
		}
		if i.Sample != "" {
			attrs = append(attrs, slog.String("sample", i.Sample))
		}
		if i.Configuration != "" {
			attrs = append(attrs, slog.String("configuration", i.Configuration))
		}
		if i.Section != "" {
			attrs = append(attrs, slog.String("section", i.Section))
		}
		if i.Kind == IssueIncompleteRow {
			logger.Info("row retained without verdict", attrs...)
		} else {
			logger.Warn("row discarded", attrs...)
		}
	}
}
