package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is absent from the header or the record.
	ErrMissingColumn = errors.New("schema: missing column")
	// ErrRequired is returned when a required column holds an empty or null value.
	ErrRequired = errors.New("schema: required value is empty")
	// ErrUnboundColumn is returned when a schema without header columns contains a column with no position.
	ErrUnboundColumn = errors.New("schema: column has neither a header match nor a position")
)

// FieldError reports a column that could not be decoded. Line is the physical line on which the record
// ended, when known; Index is -1 when the column is missing from the header.
type FieldError struct {
	Line   int
	Column string
	Index  int
	Err    error
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("schema: line %d, column %q (index %d): %v", e.Line, e.Column, e.Index, e.Err)
	}
	return fmt.Sprintf("schema: column %q (index %d): %v", e.Column, e.Index, e.Err)
}

func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
