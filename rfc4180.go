package linecsv

import (
	"io"
	"strings"
	"unicode/utf8"
)

// RFC4180Parser tokenizes lines following RFC 4180. There is no escape character: inside a quoted field a
// doubled quote stands for one quote character. The parser never fails; malformed quoting is returned as
// field data.
type RFC4180Parser struct {
	base
}

// NewRFC4180Parser validates cfg and builds the parser. cfg.Escape, cfg.StrictQuotes,
// cfg.IgnoreLeadingWhiteSpace and cfg.IgnoreQuotations do not apply and are cleared.
func NewRFC4180Parser(cfg Config) (*RFC4180Parser, error) {
	cfg.Variant = RFC4180
	cfg.Escape = NullCharacter
	cfg.StrictQuotes = false
	cfg.IgnoreLeadingWhiteSpace = false
	cfg.IgnoreQuotations = false
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RFC4180Parser{base: newBase(cfg)}, nil
}

func (p *RFC4180Parser) ParseLine(line string) (Record, error) {
	rec, _ := p.parse(line, Pending{}, false)
	return rec, nil
}

// ParseLineMulti prepends the text of an open pending value to line. When the last field is left open it is
// removed from the record and returned, with a trailing newline, as the new pending value.
func (p *RFC4180Parser) ParseLineMulti(line string, pending Pending) (Record, Pending, error) {
	rec, next := p.parse(line, pending, true)
	return rec, next, nil
}

func (p *RFC4180Parser) Render(fields Record, quoteAll bool) string {
	return p.render(p, fields, quoteAll)
}

func (p *RFC4180Parser) RenderTo(w io.Writer, fields Record, quoteAll bool) error {
	return p.renderTo(p, w, fields, quoteAll)
}

func (p *RFC4180Parser) parse(line string, pending Pending, multi bool) (Record, Pending) {
	toProcess := line
	if multi && pending.open {
		toProcess = pending.text + line
	}

	if p.cfg.Quote == NullCharacter || !strings.ContainsRune(toProcess, p.cfg.Quote) {
		return p.tokenize(toProcess), Pending{}
	}

	elements, next := p.splitWhileNotInQuotes(toProcess, multi)
	rec := make(Record, len(elements))
	for i, e := range elements {
		if strings.Contains(e, p.quoteAsString) {
			rec[i] = p.handleQuotes(e)
			continue
		}
		rec[i] = p.emptyField(e, false)
	}
	return rec, next
}

func (p *RFC4180Parser) tokenize(line string) Record {
	parts := strings.Split(line, p.separatorAsString)
	rec := make(Record, len(parts))
	for i, s := range parts {
		rec[i] = p.emptyField(s, false)
	}
	return rec
}

// splitWhileNotInQuotes cuts line at separators that are not inside a quoted field. Quoted fields keep
// their quotes; handleQuotes removes them afterwards.
func (p *RFC4180Parser) splitWhileNotInQuotes(line string, multi bool) ([]string, Pending) {
	sep, quote := p.cfg.Separator, p.cfg.Quote
	sepLen := utf8.RuneLen(sep)

	var elements []string
	cur := 0
	for cur < len(line) {
		nextSeparator := indexRuneFrom(line, sep, cur)
		nextQuote := indexRuneFrom(line, quote, cur)

		switch {
		case nextSeparator == -1:
			elements = append(elements, line[cur:])
			cur = len(line)
		case nextQuote == -1 || nextQuote > nextSeparator || nextQuote != cur:
			elements = append(elements, line[cur:nextSeparator])
			cur = nextSeparator + sepLen
		default:
			fieldEnd := p.findEndOfFieldFromPosition(line, cur)
			if fieldEnd >= len(line) {
				elements = append(elements, line[cur:])
			} else {
				elements = append(elements, line[cur:fieldEnd])
			}
			cur = fieldEnd + sepLen
		}
	}

	if multi && len(elements) > 0 && p.isIncomplete(elements[len(elements)-1]) {
		last := elements[len(elements)-1]
		return elements[:len(elements)-1], openPending(last + "\n")
	}
	if strings.HasSuffix(line, p.separatorAsString) {
		elements = append(elements, "")
	}
	return elements, Pending{}
}

// isIncomplete reports whether a field opened a quote that the line did not close.
func (p *RFC4180Parser) isIncomplete(field string) bool {
	startsButDoesNotEnd := strings.HasPrefix(field, p.quoteAsString) && !strings.HasSuffix(field, p.quoteAsString)
	count := strings.Count(field, p.quoteAsString)
	return startsButDoesNotEnd || count == 1 || count%2 != 0
}

// findEndOfFieldFromPosition returns the offset of the separator closing the quoted field that opens at cur,
// or len(line) when the field runs to the end. A quote closes the field only when it is not doubled and is
// followed by the separator.
func (p *RFC4180Parser) findEndOfFieldFromPosition(line string, cur int) int {
	quote := p.cfg.Quote
	quoteLen := utf8.RuneLen(quote)

	nextQuote := indexRuneFrom(line, quote, cur+quoteLen)
	inQuote := false
	for p.haveNotFoundLastQuote(line, nextQuote) {
		if r, _, _ := runeAt(line, nextQuote+quoteLen); !inQuote && r == p.cfg.Separator {
			return nextQuote + quoteLen
		}
		for {
			nextQuote = indexRuneFrom(line, quote, nextQuote+quoteLen)
			inQuote = !inQuote
			if !p.haveNotFoundLastQuote(line, nextQuote) {
				break
			}
			if r, _, _ := runeAt(line, nextQuote+quoteLen); r != quote {
				break
			}
		}
	}
	return len(line)
}

func (p *RFC4180Parser) haveNotFoundLastQuote(line string, nextQuote int) bool {
	return nextQuote != -1 && nextQuote+len(p.quoteAsString) < len(line)
}

// handleQuotes strips one surrounding quote pair, unless the field holds a single quote, and collapses
// doubled quotes.
func (p *RFC4180Parser) handleQuotes(element string) Field {
	ret := element
	if strings.Count(ret, p.quoteAsString) != 1 && strings.HasPrefix(ret, p.quoteAsString) {
		ret = strings.TrimPrefix(ret, p.quoteAsString)
		ret = strings.TrimSuffix(ret, p.quoteAsString)
	}
	ret = p.collapseQuotes.Replace(ret)
	if ret == "" && p.cfg.NullFieldIndicator.EmptyQuotesAreNull() {
		return NullField()
	}
	return Field{Value: ret}
}

func (p *RFC4180Parser) writeValue(sb *strings.Builder, value string) {
	if p.doubleQuotes == nil {
		sb.WriteString(value)
		return
	}
	_, _ = p.doubleQuotes.WriteString(sb, value)
}
