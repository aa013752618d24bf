package linecsv

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Field is one column of a record. Null is set when the null field policy maps an empty value to null;
// Value is then empty.
type Field struct {
	Value string
	Null  bool
}

// NullField returns a null Field.
func NullField() Field {
	return Field{Null: true}
}

// Record is an ordered list of fields; index is the column position.
type Record []Field

// RecordOf builds a Record of non-null fields.
func RecordOf(values ...string) Record {
	rec := make(Record, len(values))
	for i, v := range values {
		rec[i] = Field{Value: v}
	}
	return rec
}

// Strings returns the field values, null fields as empty strings.
func (r Record) Strings() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Value
	}
	return out
}

// Pending is the unterminated quoted field carried between ParseLineMulti calls. The zero value is closed.
type Pending struct {
	text string
	open bool
}

// IsOpen reports whether a quoted field is still waiting for more lines.
func (p Pending) IsOpen() bool {
	return p.open
}

// Text returns the accumulated text, including the newline appended for each consumed line.
func (p Pending) Text() string {
	return p.text
}

func openPending(text string) Pending {
	return Pending{text: text, open: true}
}

// Parser tokenizes CSV lines and renders records back into lines. Implementations are immutable after
// construction and safe for concurrent use; multi-line state travels in the Pending value.
type Parser interface {
	// ParseLine tokenizes one self-contained line.
	ParseLine(line string) (Record, error)
	// ParseLineMulti tokenizes line as the continuation of pending. The returned Pending is open when the
	// line ended inside a quoted field; the returned Record then holds only the fields completed so far.
	ParseLineMulti(line string, pending Pending) (Record, Pending, error)
	// Flush ends the input: an open pending value is returned as a single field, otherwise Flush returns nil.
	Flush(pending Pending) Record
	// Render joins fields into one CSV line.
	Render(fields Record, quoteAll bool) string
	// RenderTo writes the rendered line to w.
	RenderTo(w io.Writer, fields Record, quoteAll bool) error
	// Config returns the settings the parser was built with.
	Config() Config
}

// base holds what both variants share: special characters in precomputed forms, the null field policy
// and the rendering skeleton.
type base struct {
	cfg Config

	separatorAsString    string
	quoteAsString        string
	quoteDoubledAsString string
	escapeAsString       string

	// collapseQuotes turns doubled quotes into single quotes.
	collapseQuotes *strings.Replacer
	// doubleQuotes doubles every quote character.
	doubleQuotes *strings.Replacer
}

func newBase(cfg Config) base {
	b := base{
		cfg:               cfg,
		separatorAsString: string(cfg.Separator),
	}
	if cfg.Quote != NullCharacter {
		b.quoteAsString = string(cfg.Quote)
		b.quoteDoubledAsString = b.quoteAsString + b.quoteAsString
		b.collapseQuotes = strings.NewReplacer(b.quoteDoubledAsString, b.quoteAsString)
		b.doubleQuotes = strings.NewReplacer(b.quoteAsString, b.quoteDoubledAsString)
	}
	if cfg.Escape != NullCharacter {
		b.escapeAsString = string(cfg.Escape)
	}
	return b
}

func (b *base) Config() Config {
	return b.cfg
}

func (b *base) Flush(pending Pending) Record {
	if !pending.open {
		return nil
	}
	return Record{{Value: pending.text}}
}

// emptyField applies the null field policy to a finished token.
func (b *base) emptyField(s string, fromQuotedField bool) Field {
	if s == "" && b.cfg.NullFieldIndicator.convertsEmpty(fromQuotedField) {
		return NullField()
	}
	return Field{Value: s}
}

// surroundWithQuotes decides whether a rendered value needs quotes.
func (b *base) surroundWithQuotes(f Field, quoteAll bool) bool {
	if b.cfg.Quote == NullCharacter {
		return false
	}
	if quoteAll {
		return true
	}
	if f.Null {
		return b.cfg.NullFieldIndicator == EmptyQuotes
	}
	if f.Value == "" {
		return b.cfg.NullFieldIndicator == EmptySeparators
	}
	return strings.Contains(f.Value, b.separatorAsString) ||
		strings.ContainsAny(f.Value, "\r\n") ||
		strings.Contains(f.Value, b.quoteAsString)
}

// renderer writes one field value, escaping as the variant requires.
type renderer interface {
	writeValue(sb *strings.Builder, value string)
}

func (b *base) render(r renderer, fields Record, quoteAll bool) string {
	var sb strings.Builder
	sb.Grow(b.renderSize(fields))
	b.renderInto(r, &sb, fields, quoteAll)
	return sb.String()
}

func (b *base) renderTo(r renderer, w io.Writer, fields Record, quoteAll bool) error {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(b.separatorAsString)
		}
		b.renderField(r, &sb, f, quoteAll)
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
		sb.Reset()
	}
	return nil
}

func (b *base) renderInto(r renderer, sb *strings.Builder, fields Record, quoteAll bool) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteString(b.separatorAsString)
		}
		b.renderField(r, sb, f, quoteAll)
	}
}

func (b *base) renderField(r renderer, sb *strings.Builder, f Field, quoteAll bool) {
	quoted := b.surroundWithQuotes(f, quoteAll)
	if quoted {
		sb.WriteString(b.quoteAsString)
	}
	if !f.Null {
		r.writeValue(sb, f.Value)
	}
	if quoted {
		sb.WriteString(b.quoteAsString)
	}
}

func (b *base) renderSize(fields Record) int {
	n := len(fields) * utf8.RuneLen(b.cfg.Separator)
	for _, f := range fields {
		n += len(f.Value) + 2
	}
	return n
}
