package flatfile

import "fmt"

// ParseError reports a single malformed record. It carries the raw line so
// the loader can log exactly what was skipped.
type ParseError struct {
	Line  string
	Field string
	Err   error
}

func newParseError(line, field string, err error) *ParseError {
	return &ParseError{Line: line, Field: field, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s in record %q: %v", e.Field, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
