package linecsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestVariantText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text    string
		want    Variant
		wantErr bool
	}{
		{text: "lenient", want: Lenient},
		{text: "", want: Lenient},
		{text: "RFC4180", want: RFC4180},
		{text: " rfc ", want: RFC4180},
		{text: "excel", wantErr: true},
	}

	for _, tt := range tests {
		var v Variant
		err := v.UnmarshalText([]byte(tt.text))
		if tt.wantErr {
			assert.Error(t, err, tt.text)
			continue
		}
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, v, tt.text)
	}

	assert.Equal(t, "rfc4180", RFC4180.String())
	assert.Equal(t, "Variant(7)", Variant(7).String())
}

func TestNullFieldIndicatorText(t *testing.T) {
	t.Parallel()

	for _, n := range []NullFieldIndicator{Neither, EmptySeparators, EmptyQuotes, Both} {
		var got NullFieldIndicator
		require.NoError(t, got.UnmarshalText([]byte(n.String())))
		assert.Equal(t, n, got)
	}

	var n NullFieldIndicator
	require.NoError(t, n.UnmarshalText([]byte("Empty-Quotes")))
	assert.Equal(t, EmptyQuotes, n)
	assert.Error(t, n.UnmarshalText([]byte("sometimes")))
}

func TestNullFieldIndicatorPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n          NullFieldIndicator
		separators bool
		quotes     bool
	}{
		{n: Neither},
		{n: EmptySeparators, separators: true},
		{n: EmptyQuotes, quotes: true},
		{n: Both, separators: true, quotes: true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.separators, tt.n.EmptySeparatorsAreNull(), tt.n.String())
		assert.Equal(t, tt.quotes, tt.n.EmptyQuotesAreNull(), tt.n.String())
	}
}

func TestParseRune(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: ";", want: ';'},
		{in: "tab", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "space", want: ' '},
		{in: "none", want: NullCharacter},
		{in: "", want: NullCharacter},
		{in: "§", want: '§'},
		{in: "ab", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRune(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParserBuilderDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewParserBuilder().Config()
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, Lenient, cfg.Variant)
	assert.Equal(t, ',', cfg.Separator)
	assert.Equal(t, '"', cfg.Quote)
	assert.Equal(t, '\\', cfg.Escape)
	assert.False(t, cfg.StrictQuotes)
	assert.True(t, cfg.IgnoreLeadingWhiteSpace)
	assert.False(t, cfg.IgnoreQuotations)
	assert.Equal(t, Neither, cfg.NullFieldIndicator)
	assert.Equal(t, language.English, cfg.Locale)
}

func TestParserBuilderSelectsVariant(t *testing.T) {
	t.Parallel()

	p, err := NewParserBuilder().Build()
	require.NoError(t, err)
	assert.IsType(t, &LenientParser{}, p)

	p, err = NewParserBuilder().WithVariant(RFC4180).Build()
	require.NoError(t, err)
	assert.IsType(t, &RFC4180Parser{}, p)

	_, err = New(Config{Variant: Variant(9), Separator: ','})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestParserConfigRoundTrip(t *testing.T) {
	t.Parallel()

	p, err := NewParserBuilder().
		WithSeparator('\t').
		WithQuoteChar('\'').
		WithEscapeChar('^').
		WithStrictQuotes(true).
		WithIgnoreLeadingWhiteSpace(false).
		WithIgnoreQuotations(true).
		WithFieldAsNull(Both).
		Build()
	require.NoError(t, err)

	cfg := p.Config()
	assert.Equal(t, '\t', cfg.Separator)
	assert.Equal(t, '\'', cfg.Quote)
	assert.Equal(t, '^', cfg.Escape)
	assert.True(t, cfg.StrictQuotes)
	assert.False(t, cfg.IgnoreLeadingWhiteSpace)
	assert.True(t, cfg.IgnoreQuotations)
	assert.Equal(t, Both, cfg.NullFieldIndicator)
}

func TestConfigErrorMethods(t *testing.T) {
	t.Parallel()

	err := &ConfigError{Err: ErrConfigConflict}
	assert.Equal(t, ErrConfigConflict.Error(), err.Error())
	assert.ErrorIs(t, err, ErrConfigConflict)

	var nilErr *ConfigError
	assert.Empty(t, nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestLastRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", lastRunes("abc", 0))
	assert.Equal(t, "abc", lastRunes("abc", 5))
	assert.Equal(t, "bc", lastRunes("abc", 2))
	assert.Equal(t, "äö", lastRunes("xyäö", 2))
}
