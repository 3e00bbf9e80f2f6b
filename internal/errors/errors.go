// Package errors defines the error taxonomy of the raw report pipeline.
//
// Two fatal error types abort a unit of work: DocumentFormatError aborts
// the current document, OutputWriteError aborts one output format.
// Everything recoverable at row granularity is an Issue collected into
// an IssueReport instead of raised control flow, so a single pass over
// a document can report every problem it contains.
package errors

import (
	"fmt"
)

// DocumentFormatError means the input could not be opened or parsed as a
// word-processor document at all. Fatal for that document; a batch run
// continues with the next input.
type DocumentFormatError struct {
	Path string
	Err  error
}

func (e *DocumentFormatError) Error() string {
	return fmt.Sprintf("unreadable document %s: %v", e.Path, e.Err)
}

func (e *DocumentFormatError) Unwrap() error { return e.Err }

// NewDocumentFormatError wraps err as a document-level fatal error.
func NewDocumentFormatError(path string, err error) *DocumentFormatError {
	return &DocumentFormatError{Path: path, Err: err}
}

// OutputWriteError means one output format failed to write. Only that
// format's generation aborts; sibling formats still attempt to complete.
type OutputWriteError struct {
	Format string
	Path   string
	Err    error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("writing %s output %s: %v", e.Format, e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// NewOutputWriteError wraps err as a single-format write failure.
func NewOutputWriteError(format, path string, err error) *OutputWriteError {
	return &OutputWriteError{Format: format, Path: path, Err: err}
}
