package importer

import (
	"errors"
	"fmt"
)

// ErrFrontMatter indicates a document's front matter is missing or unterminated.
var ErrFrontMatter = errors.New("invalid front matter")

// LineError reports a malformed line in a JSONL source.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Failure records a post that could not be imported.
type Failure struct {
	Source string // File path, with ":line" for JSONL sources
	Err    error
}

// Error implements the error interface.
func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}
