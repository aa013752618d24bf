// Package schema decodes linecsv records into typed values. A Schema lists the columns of T explicitly, each
// with the setter that stores its value, so no reflection is involved in reading fields.
package schema

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/oleg578/linecsv"
)

// Schema describes how records map onto T. It is immutable once bound and safe for concurrent use.
type Schema[T any] struct {
	columns  []Column[T]
	aliases  map[string]string
	validate func(*T) error
}

func New[T any](columns ...Column[T]) *Schema[T] {
	return &Schema[T]{columns: columns}
}

// WithAliases translates header names before they are matched against column names. Keys are header names,
// values are column names; both are compared case-insensitively.
func (s *Schema[T]) WithAliases(aliases map[string]string) *Schema[T] {
	s.aliases = make(map[string]string, len(aliases))
	for header, column := range aliases {
		s.aliases[normalize(header)] = normalize(column)
	}
	return s
}

// WithValidator runs fn on every decoded value.
func (s *Schema[T]) WithValidator(fn func(*T) error) *Schema[T] {
	s.validate = fn
	return s
}

// StructValidator checks `validate` struct tags of T with go-playground/validator.
func StructValidator[T any]() func(*T) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	return func(t *T) error {
		return v.Struct(t)
	}
}

// NeedsHeader reports whether any column is bound by name.
func (s *Schema[T]) NeedsHeader() bool {
	for _, c := range s.columns {
		if !c.positional() {
			return true
		}
	}
	return false
}

// Bind resolves column positions against a header record.
func (s *Schema[T]) Bind(header linecsv.Record) (*Binding[T], error) {
	byName := make(map[string]int, len(header))
	for i, f := range header {
		name := normalize(f.Value)
		if alias, ok := s.aliases[name]; ok {
			name = alias
		}
		if _, dup := byName[name]; !dup {
			byName[name] = i
		}
	}

	positions := make([]int, len(s.columns))
	for i, c := range s.columns {
		if c.positional() {
			positions[i] = c.Index
			continue
		}
		pos, ok := byName[normalize(c.Name)]
		if !ok {
			if c.Required {
				return nil, &FieldError{Column: c.Name, Index: -1, Err: ErrMissingColumn}
			}
			pos = -1
		}
		positions[i] = pos
	}
	return &Binding[T]{schema: s, positions: positions}, nil
}

// BindPositions binds a schema whose columns all carry a position.
func (s *Schema[T]) BindPositions() (*Binding[T], error) {
	positions := make([]int, len(s.columns))
	for i, c := range s.columns {
		if !c.positional() {
			return nil, &FieldError{Column: c.Name, Index: -1, Err: ErrUnboundColumn}
		}
		positions[i] = c.Index
	}
	return &Binding[T]{schema: s, positions: positions}, nil
}

// Binding is a Schema with resolved column positions.
type Binding[T any] struct {
	schema    *Schema[T]
	positions []int
}

// Position returns the record index bound to the named column, or -1.
func (b *Binding[T]) Position(name string) int {
	for i, c := range b.schema.columns {
		if strings.EqualFold(c.Name, name) {
			return b.positions[i]
		}
	}
	return -1
}

// Decode converts rec into a T. Empty and null values leave the field at its zero value unless the column
// is required.
func (b *Binding[T]) Decode(rec linecsv.Record) (T, error) {
	var out, zero T
	for i, c := range b.schema.columns {
		pos := b.positions[i]
		if pos < 0 {
			continue
		}
		if pos >= len(rec) {
			if c.Required {
				return zero, &FieldError{Column: c.Name, Index: pos, Err: ErrMissingColumn}
			}
			continue
		}

		f := rec[pos]
		if f.Null || f.Value == "" {
			if c.Required {
				return zero, &FieldError{Column: c.Name, Index: pos, Err: ErrRequired}
			}
			continue
		}
		if err := c.Set(&out, f.Value); err != nil {
			return zero, &FieldError{Column: c.Name, Index: pos, Err: err}
		}
	}

	if b.schema.validate != nil {
		if err := b.schema.validate(&out); err != nil {
			return zero, err
		}
	}
	return out, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
