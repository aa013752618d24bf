package schema

import (
	"errors"
	"io"

	"github.com/oleg578/linecsv"
)

// Decoder reads typed values from a linecsv.Reader. When the schema binds any column by name, the first
// record is consumed as the header.
type Decoder[T any] struct {
	r       *linecsv.Reader
	schema  *Schema[T]
	binding *Binding[T]
}

func NewDecoder[T any](r *linecsv.Reader, s *Schema[T]) *Decoder[T] {
	return &Decoder[T]{r: r, schema: s}
}

// Header returns the binding, reading the header record on first use.
func (d *Decoder[T]) Header() (*Binding[T], error) {
	if d.binding != nil {
		return d.binding, nil
	}
	if !d.schema.NeedsHeader() {
		b, err := d.schema.BindPositions()
		if err != nil {
			return nil, err
		}
		d.binding = b
		return b, nil
	}

	header, err := d.r.Read()
	if err != nil {
		return nil, err
	}
	b, err := d.schema.Bind(header)
	if err != nil {
		return nil, withLine(err, d.r.LinesRead())
	}
	d.binding = b
	return b, nil
}

// Decode returns the next value. io.EOF is returned once the reader is exhausted.
func (d *Decoder[T]) Decode() (T, error) {
	var zero T
	b, err := d.Header()
	if err != nil {
		return zero, err
	}
	rec, err := d.r.Read()
	if err != nil {
		return zero, err
	}
	v, err := b.Decode(rec)
	if err != nil {
		return zero, withLine(err, d.r.LinesRead())
	}
	return v, nil
}

// DecodeAll decodes every remaining record.
func (d *Decoder[T]) DecodeAll() ([]T, error) {
	var out []T
	for {
		v, err := d.Decode()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func withLine(err error, line int) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Line == 0 {
		fe.Line = line
	}
	return err
}
