package linecsv

import (
	"io"
	"strings"
	"unicode/utf8"
)

// beginningOfLine is the number of leading characters in which a quote is never kept as field data.
const beginningOfLine = 3

// LenientParser tokenizes lines using an escape character in addition to quoting. Quotes that appear in the
// middle of an unquoted field are kept as data where that reading is unambiguous.
//
// With StrictQuotes set, characters outside quotes are dropped: `"a" , "b"` yields a and b. With
// IgnoreQuotations set, quote characters never protect separators.
type LenientParser struct {
	base
}

// NewLenientParser validates cfg and builds the parser. cfg.Variant is ignored.
func NewLenientParser(cfg Config) (*LenientParser, error) {
	cfg.Variant = Lenient
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LenientParser{base: newBase(cfg)}, nil
}

// ParseLine tokenizes one line. Input ending inside a quoted field fails with a *ParseError wrapping
// ErrUnterminatedQuote, or ErrBareQuote when the quote was opened in the middle of a field.
func (p *LenientParser) ParseLine(line string) (Record, error) {
	rec, _, err := p.parse(line, Pending{}, false)
	return rec, err
}

// ParseLineMulti tokenizes line, resuming inside the quoted field held by pending when it is open.
func (p *LenientParser) ParseLineMulti(line string, pending Pending) (Record, Pending, error) {
	return p.parse(line, pending, true)
}

func (p *LenientParser) Render(fields Record, quoteAll bool) string {
	return p.render(p, fields, quoteAll)
}

func (p *LenientParser) RenderTo(w io.Writer, fields Record, quoteAll bool) error {
	return p.renderTo(p, w, fields, quoteAll)
}

// NextCharacterEscapable reports whether the character after the one at byte offset i may be escaped:
// only inside quotes, and only when it is the quote or the escape character.
func (p *LenientParser) NextCharacterEscapable(line string, inQuotes bool, i int) bool {
	_, size, ok := runeAt(line, i)
	if !inQuotes || !ok {
		return false
	}
	next, _, ok := runeAt(line, i+size)
	return ok && p.isCharacterEscapable(next)
}

func (p *LenientParser) isCharacterEscapable(r rune) bool {
	return sameCharacter(p.cfg.Quote, r) || sameCharacter(p.cfg.Escape, r)
}

func (p *LenientParser) isNextCharacterEscapedQuote(line string, inQuotes bool, next int) bool {
	if !inQuotes {
		return false
	}
	r, _, ok := runeAt(line, next)
	return ok && r == p.cfg.Quote
}

func (p *LenientParser) parse(line string, pending Pending, multi bool) (Record, Pending, error) {
	var (
		tokens     Record
		out        strings.Builder
		inQuotes   bool
		inField    bool
		fromQuoted bool
		bareQuote  bool
		position   int
	)

	quote := p.cfg.Quote
	escape := p.cfg.Escape
	strict := p.cfg.StrictQuotes
	ignoreQuotes := p.cfg.IgnoreQuotations

	if multi && pending.open {
		out.WriteString(pending.text)
		inQuotes = !ignoreQuotes
	}

	for i := 0; i < len(line); {
		c, size := utf8.DecodeRuneInString(line[i:])
		start := i
		i += size
		position++

		switch {
		case escape != NullCharacter && c == escape:
			if !strict {
				inField = true
			}
			// The escaped character is taken literally; a trailing escape vanishes.
			if _, n, ok := runeAt(line, i); ok {
				i += n
				position++
				if !strict || (inQuotes && !ignoreQuotes) {
					out.WriteString(line[i-n : i])
				}
			}
		case quote != NullCharacter && c == quote:
			if p.isNextCharacterEscapedQuote(line, (inQuotes && !ignoreQuotes) || inField, i) {
				_, n, _ := runeAt(line, i)
				i += n
				position++
				out.WriteRune(quote)
			} else {
				inQuotes = !inQuotes
				if out.Len() == 0 {
					fromQuoted = true
				}
				p.keepQuoteInsideField(line, start, i, position, &out)
				if inQuotes {
					bareQuote = out.Len() > 0
				}
			}
			inField = !inField
		case c == p.cfg.Separator && !(inQuotes && !ignoreQuotes):
			tokens = append(tokens, p.emptyField(out.String(), fromQuoted))
			out.Reset()
			fromQuoted = false
			inField = false
		default:
			if !strict || (inQuotes && !ignoreQuotes) {
				out.WriteString(line[start:i])
				inField = true
				fromQuoted = true
			}
		}
	}

	if inQuotes && !ignoreQuotes {
		if multi {
			out.WriteByte('\n')
			return tokens, openPending(out.String()), nil
		}
		return nil, Pending{}, p.unterminated(out.String(), bareQuote)
	}

	tokens = append(tokens, p.emptyField(out.String(), fromQuoted))
	return tokens, Pending{}, nil
}

// keepQuoteInsideField handles a quote that toggled the quoted state outside strict mode. A quote with data
// on both sides (a,bc"d"ef,g) is part of the field; whitespace before an opening quote is dropped when
// IgnoreLeadingWhiteSpace is set.
func (p *LenientParser) keepQuoteInsideField(line string, quoteStart, after, position int, out *strings.Builder) {
	if p.cfg.StrictQuotes || position <= beginningOfLine {
		return
	}
	prev, _ := runeBefore(line, quoteStart)
	next, _, ok := runeAt(line, after)
	if prev == p.cfg.Separator || !ok || next == p.cfg.Separator {
		return
	}
	if p.cfg.IgnoreLeadingWhiteSpace && out.Len() > 0 && isWhitespace(out.String()) {
		out.Reset()
		return
	}
	out.WriteRune(p.cfg.Quote)
}

func (p *LenientParser) unterminated(text string, bare bool) error {
	err, id := ErrUnterminatedQuote, MsgUnterminatedQuote
	if bare {
		err, id = ErrBareQuote, MsgBareQuote
	}
	return &ParseError{
		Err:     err,
		Text:    text,
		Message: p.cfg.localize(id, map[string]any{"Text": text}),
	}
}

// writeValue prefixes quote and escape characters with the escape character. Without an escape character
// quotes are doubled instead.
func (p *LenientParser) writeValue(sb *strings.Builder, value string) {
	if p.cfg.Escape == NullCharacter {
		if p.doubleQuotes != nil {
			_, _ = p.doubleQuotes.WriteString(sb, value)
			return
		}
		sb.WriteString(value)
		return
	}

	start := 0
	for i, r := range value {
		if p.isCharacterEscapable(r) {
			sb.WriteString(value[start:i])
			sb.WriteRune(p.cfg.Escape)
			start = i
		}
	}
	sb.WriteString(value[start:])
}
