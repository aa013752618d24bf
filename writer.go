package linecsv

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("linecsv: writer is nil")
	errWriterNoTarget = errors.New("linecsv: writer destination cannot be nil")
)

// Writer emits records rendered by a Parser, so the output dialect matches what that parser reads back.
type Writer struct {
	dst    *bufio.Writer
	parser Parser

	// UseCRLF writes records terminated with \r\n when set.
	UseCRLF bool
	// AlwaysQuote forces quoting for all fields when enabled.
	AlwaysQuote bool

	err error
}

// NewWriter creates a Writer with internal buffering. A nil parser selects a LenientParser built from
// DefaultConfig.
func NewWriter(w io.Writer, p Parser) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	if p == nil {
		p = defaultParser()
	}
	return &Writer{
		dst:    bufio.NewWriterSize(w, defaultBufferSize),
		parser: p,
	}
}

// Reset updates the underlying writer while preserving the parser and configuration flags.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	if w.parser == nil {
		w.parser = defaultParser()
	}
	w.err = nil
}

// Write emits a single record terminated with the configured newline sequence.
func (w *Writer) Write(record Record) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil || w.parser == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	if err := w.parser.RenderTo(w.dst, record, w.AlwaysQuote); err != nil {
		w.err = err
		return err
	}

	var err error
	if w.UseCRLF {
		_, err = w.dst.WriteString("\r\n")
	} else {
		err = w.dst.WriteByte('\n')
	}
	if err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteStrings emits plain string values as non-null fields.
func (w *Writer) WriteStrings(values []string) error {
	return w.Write(RecordOf(values...))
}

// WriteAll writes multiple records, stopping at the first error, and flushes.
func (w *Writer) WriteAll(records []Record) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}
