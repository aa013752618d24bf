package linecsv

import (
	"errors"
	"fmt"
)

// ContextSnippetSize is the number of trailing runes of the accumulated text quoted in multi-line limit messages.
const ContextSnippetSize = 100

var (
	// ErrConfigConflict is returned when the separator, quote and escape characters are not pairwise distinct.
	ErrConfigConflict = errors.New("linecsv: separator, quote and escape characters must differ")
	// ErrSeparatorUndefined is returned when the separator is NullCharacter.
	ErrSeparatorUndefined = errors.New("linecsv: separator character is not defined")
	// ErrUnterminatedQuote is returned when input ends inside a quoted field that may not continue.
	ErrUnterminatedQuote = errors.New("linecsv: unterminated quoted field")
	// ErrBareQuote is returned when a quote opened in the middle of an unquoted field is never closed.
	ErrBareQuote = errors.New("linecsv: bare quote in non-quoted field")
	// ErrMultilineLimit is returned when a record spans more physical lines than allowed.
	ErrMultilineLimit = errors.New("linecsv: multiline limit exceeded")
	// ErrFieldCount is returned when a record contains an unexpected number of fields.
	ErrFieldCount = errors.New("linecsv: wrong number of fields")
)

// ConfigError reports a parser configuration that cannot be built.
type ConfigError struct {
	Err     error
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return "linecsv: " + e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "linecsv: invalid configuration"
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ParseError describes a record that could not be tokenized. Line is the physical line on which the error
// was detected; parsers working on a single line leave it at zero and the Reader fills it in.
type ParseError struct {
	Line    int
	Err     error
	Text    string
	Message string
}

// Error formats the parse error with the stored line when known.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("linecsv: parse error on line %d: %s", e.Line, msg)
	}
	return "linecsv: parse error: " + msg
}

// Unwrap returns the underlying Err so ParseError participates in errors.Is.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MultilineLimitError is returned by the Reader when an open quoted field spans more physical lines than
// Reader.MultilineLimit. Context holds the physical lines of the record read so far; the message quotes its tail.
type MultilineLimitError struct {
	Row     int
	Limit   int
	Context string
	Message string
}

func (e *MultilineLimitError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return "linecsv: " + e.Message
	}
	return fmt.Sprintf("linecsv: multiline limit of %d broken on row %d. Context: %s",
		e.Limit, e.Row, lastRunes(e.Context, ContextSnippetSize))
}

func (e *MultilineLimitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return ErrMultilineLimit
}
