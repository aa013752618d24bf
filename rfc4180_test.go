package linecsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRFC(t *testing.T, b *ParserBuilder) Parser {
	t.Helper()
	return buildParser(t, b.WithVariant(RFC4180))
}

func TestRFC4180ParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder func() *ParserBuilder
		line    string
		want    []string
	}{
		{
			name: "simple",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quotedSeparators",
			line: `a,"b,b,b",c`,
			want: []string{"a", "b,b,b", "c"},
		},
		{
			name: "trailingSeparator",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "trailingSeparatorAfterQuotedField",
			line: `a,"b",`,
			want: []string{"a", "b", ""},
		},
		{
			name: "doubledQuotes",
			line: `"a""b",c`,
			want: []string{`a"b`, "c"},
		},
		{
			name: "onlyDoubledQuote",
			line: `"""",c`,
			want: []string{`"`, "c"},
		},
		{
			name: "quoteInsideUnquotedField",
			line: `a,b"c,d`,
			want: []string{"a", `b"c`, "d"},
		},
		{
			name: "escapeCharacterIsData",
			line: `a\,b`,
			want: []string{`a\`, "b"},
		},
		{
			name: "quotedLineBreak",
			line: "\"x\ny\",z",
			want: []string{"x\ny", "z"},
		},
		{
			name: "unterminatedQuoteKeptAsData",
			line: `a,"b`,
			want: []string{"a", `"b`},
		},
		{
			name: "leadingWhitespaceKept",
			line: ` a, "b"`,
			want: []string{" a", ` "b"`},
		},
		{
			name: "customDialect",
			builder: func() *ParserBuilder {
				return NewParserBuilder().WithSeparator(';').WithQuoteChar('\'')
			},
			line: `1;'x;''y''';3`,
			want: []string{"1", "x;'y'", "3"},
		},
		{
			name: "noQuoteCharacter",
			builder: func() *ParserBuilder {
				return NewParserBuilder().WithQuoteChar(NullCharacter)
			},
			line: `"a,b"`,
			want: []string{`"a`, `b"`},
		},
		{
			name: "multibyteQuote",
			builder: func() *ParserBuilder {
				return NewParserBuilder().WithQuoteChar('«')
			},
			line: `a,«b,c«,«x««y«`,
			want: []string{"a", "b,c", "x«y"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewParserBuilder()
			if tt.builder != nil {
				b = tt.builder()
			}
			p := newRFC(t, b)

			got, err := p.ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Strings())
		})
	}
}

func TestRFC4180ParseLineMulti(t *testing.T) {
	t.Parallel()

	p := newRFC(t, NewParserBuilder())

	rec, pending, err := p.ParseLineMulti(`a,"hello`, Pending{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, rec.Strings())
	require.True(t, pending.IsOpen())
	assert.Equal(t, "\"hello\n", pending.Text())

	rec, pending, err = p.ParseLineMulti(`big`, pending)
	require.NoError(t, err)
	assert.Empty(t, rec)
	require.True(t, pending.IsOpen())

	rec, pending, err = p.ParseLineMulti(`world",b`, pending)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello\nbig\nworld", "b"}, rec.Strings())
	assert.False(t, pending.IsOpen())
}

func TestRFC4180FlushReturnsRawPending(t *testing.T) {
	t.Parallel()

	p := newRFC(t, NewParserBuilder())

	_, pending, err := p.ParseLineMulti(`x,"never closed`, Pending{})
	require.NoError(t, err)
	require.True(t, pending.IsOpen())

	assert.Equal(t, []string{"\"never closed\n"}, p.Flush(pending).Strings())
}

func TestRFC4180NullFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		indicator NullFieldIndicator
		line      string
		want      Record
	}{
		{
			name:      "neitherSeparators",
			indicator: Neither,
			line:      ",,",
			want:      RecordOf("", "", ""),
		},
		{
			name:      "emptySeparators",
			indicator: EmptySeparators,
			line:      ",,",
			want:      Record{NullField(), NullField(), NullField()},
		},
		{
			name:      "emptySeparatorsKeepQuoted",
			indicator: EmptySeparators,
			line:      `"",x`,
			want:      Record{{Value: ""}, {Value: "x"}},
		},
		{
			name:      "emptyQuotes",
			indicator: EmptyQuotes,
			line:      `"",x,`,
			want:      Record{NullField(), {Value: "x"}, {Value: ""}},
		},
		{
			name:      "both",
			indicator: Both,
			line:      `,"",`,
			want:      Record{NullField(), NullField(), NullField()},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := newRFC(t, NewParserBuilder().WithFieldAsNull(tt.indicator))
			got, err := p.ParseLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRFC4180IgnoresEscapeInValidation(t *testing.T) {
	t.Parallel()

	p, err := NewParserBuilder().
		WithVariant(RFC4180).
		WithEscapeChar(DefaultQuote).
		Build()
	require.NoError(t, err)
	assert.Equal(t, NullCharacter, p.Config().Escape)

	_, err = NewParserBuilder().
		WithVariant(RFC4180).
		WithQuoteChar(DefaultSeparator).
		Build()
	require.ErrorIs(t, err, ErrConfigConflict)
}
