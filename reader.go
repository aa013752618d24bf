package linecsv

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/go-logr/logr"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

var defaultParser = sync.OnceValue(func() Parser {
	p, err := NewLenientParser(DefaultConfig())
	if err != nil {
		panic("linecsv: default parser: " + err.Error())
	}
	return p
})

// Reader reads records from a stream one physical line at a time, joining lines while a quoted field is
// open. The Parser decides how each line is tokenized.
type Reader struct {
	src    *bufio.Reader
	parser Parser

	// MultilineLimit caps the number of physical lines one record may span. Zero means unlimited.
	MultilineLimit int
	// SkipLines is the number of lines discarded before the first record.
	SkipLines int
	// KeepCR keeps a carriage return preceding the line feed as part of the line.
	KeepCR bool
	// FieldsPerRecord expects each record to contain this many fields. Zero captures the width of the first
	// record, a negative value disables the check.
	FieldsPerRecord int
	// Logger receives continuation and limit diagnostics. The zero value discards.
	Logger logr.Logger

	pending     Pending
	linesRead   int
	recordsRead int
	skipped     bool
	finished    bool
}

// NewReader creates a Reader consuming r, panicking if r is nil. A nil parser selects a LenientParser built
// from DefaultConfig.
func NewReader(r io.Reader, p Parser) *Reader {
	if r == nil {
		panic("linecsv: reader source cannot be nil")
	}
	if p == nil {
		p = defaultParser()
	}
	return &Reader{
		src:    bufio.NewReaderSize(r, defaultBufferSize),
		parser: p,
		Logger: logr.Discard(),
	}
}

// Parser returns the parser used to tokenize lines.
func (r *Reader) Parser() Parser {
	return r.parser
}

// Read returns the next record; io.EOF signals that no more records remain. On error no record is returned
// and the pending field is dropped, so the next call starts a fresh record.
func (r *Reader) Read() (Record, error) {
	if r == nil || r.src == nil || r.finished {
		return nil, io.EOF
	}
	if err := r.skip(); err != nil {
		return nil, err
	}

	var (
		record Record
		lines  int
		raw    strings.Builder
	)
	for {
		line, err := r.readLine()
		if errors.Is(err, io.EOF) {
			r.finished = true
			if r.pending.IsOpen() {
				return nil, r.unterminatedAtEOF()
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		lines++
		if lines > 1 {
			raw.WriteByte('\n')
		}
		raw.WriteString(line)

		if r.MultilineLimit > 0 && lines > r.MultilineLimit {
			return nil, r.multilineLimitBroken(raw.String())
		}

		fields, next, err := r.parser.ParseLineMulti(line, r.pending)
		if err != nil {
			r.pending = Pending{}
			return nil, r.lineError(err)
		}
		record = append(record, fields...)
		r.pending = next
		if !next.IsOpen() {
			break
		}
		r.Logger.V(1).Info("quoted field continues on next line", "line", r.linesRead, "linesInRecord", lines)
	}

	if err := r.checkWidth(record); err != nil {
		return nil, err
	}
	r.recordsRead++
	return record, nil
}

// ReadAll exhausts the reader, collecting records until io.EOF and returning the first non-EOF error.
func (r *Reader) ReadAll() (records []Record, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// LinesRead returns the number of physical lines consumed, skipped lines included.
func (r *Reader) LinesRead() int {
	return r.linesRead
}

// RecordsRead returns the number of records returned without error.
func (r *Reader) RecordsRead() int {
	return r.recordsRead
}

// Pending returns the multi-line state left by the last Read.
func (r *Reader) Pending() Pending {
	return r.pending
}

func (r *Reader) skip() error {
	if r.skipped {
		return nil
	}
	r.skipped = true
	for i := 0; i < r.SkipLines; i++ {
		if _, err := r.readLine(); err != nil {
			if errors.Is(err, io.EOF) {
				r.finished = true
			}
			return err
		}
	}
	return nil
}

// readLine returns the next line without its terminator. io.EOF is returned only when no data remains.
func (r *Reader) readLine() (string, error) {
	line, err := r.src.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" {
		return "", io.EOF
	}
	r.linesRead++

	line = strings.TrimSuffix(line, "\n")
	if !r.KeepCR {
		line = strings.TrimSuffix(line, "\r")
	}
	return line, nil
}

func (r *Reader) checkWidth(record Record) error {
	switch {
	case r.FieldsPerRecord < 0:
		return nil
	case r.FieldsPerRecord == 0:
		r.FieldsPerRecord = len(record)
		return nil
	case len(record) == r.FieldsPerRecord:
		return nil
	}
	cfg := r.parser.Config()
	return &ParseError{
		Line: r.linesRead,
		Err:  ErrFieldCount,
		Message: cfg.localize(MsgWrongFieldCount, map[string]any{
			"Expected": r.FieldsPerRecord,
			"Found":    len(record),
		}),
	}
}

func (r *Reader) lineError(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		located := *pe
		located.Line = r.linesRead
		return &located
	}
	return &ParseError{Line: r.linesRead, Err: err}
}

func (r *Reader) unterminatedAtEOF() error {
	text := r.pending.Text()
	r.pending = Pending{}
	cfg := r.parser.Config()
	return &ParseError{
		Line:    r.linesRead,
		Err:     ErrUnterminatedQuote,
		Text:    text,
		Message: cfg.localize(MsgUnterminatedQuoteAtEOF, map[string]any{"Text": lastRunes(text, ContextSnippetSize)}),
	}
}

// multilineLimitBroken reports the record's physical lines read so far, joined with newlines, as context.
func (r *Reader) multilineLimitBroken(context string) error {
	r.pending = Pending{}
	r.Logger.Info("multiline limit broken", "row", r.linesRead, "limit", r.MultilineLimit)

	cfg := r.parser.Config()
	return &MultilineLimitError{
		Row:     r.linesRead,
		Limit:   r.MultilineLimit,
		Context: context,
		Message: cfg.localize(MsgMultilineLimitBroken, map[string]any{
			"Limit":   r.MultilineLimit,
			"Row":     r.linesRead,
			"Context": lastRunes(context, ContextSnippetSize),
		}),
	}
}
