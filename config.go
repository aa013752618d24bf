package linecsv

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Variant selects the tokenizer implementation.
type Variant int

const (
	// Lenient selects LenientParser.
	Lenient Variant = iota
	// RFC4180 selects RFC4180Parser.
	RFC4180
)

func (v Variant) String() string {
	switch v {
	case Lenient:
		return "lenient"
	case RFC4180:
		return "rfc4180"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// UnmarshalText accepts "lenient" and "rfc4180" (case-insensitive).
func (v *Variant) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "lenient", "default":
		*v = Lenient
	case "rfc4180", "rfc":
		*v = RFC4180
	default:
		return fmt.Errorf("linecsv: unknown parser variant %q (expected lenient or rfc4180)", text)
	}
	return nil
}

// NullFieldIndicator decides which empty fields are reported as null.
type NullFieldIndicator int

const (
	// Neither reports every empty field as an empty string.
	Neither NullFieldIndicator = iota
	// EmptySeparators reports empty unquoted fields (two adjacent separators) as null.
	EmptySeparators
	// EmptyQuotes reports empty quoted fields ("") as null.
	EmptyQuotes
	// Both reports every empty field as null.
	Both
)

func (n NullFieldIndicator) String() string {
	switch n {
	case Neither:
		return "neither"
	case EmptySeparators:
		return "empty_separators"
	case EmptyQuotes:
		return "empty_quotes"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("NullFieldIndicator(%d)", int(n))
	}
}

// UnmarshalText accepts the names returned by String; dashes may replace underscores.
func (n *NullFieldIndicator) UnmarshalText(text []byte) error {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(string(text))), "-", "_") {
	case "", "neither":
		*n = Neither
	case "empty_separators":
		*n = EmptySeparators
	case "empty_quotes":
		*n = EmptyQuotes
	case "both":
		*n = Both
	default:
		return fmt.Errorf("linecsv: unknown null field indicator %q", text)
	}
	return nil
}

// EmptySeparatorsAreNull reports whether an empty unquoted field becomes null.
func (n NullFieldIndicator) EmptySeparatorsAreNull() bool {
	return n == EmptySeparators || n == Both
}

// EmptyQuotesAreNull reports whether an empty quoted field becomes null.
func (n NullFieldIndicator) EmptyQuotesAreNull() bool {
	return n == EmptyQuotes || n == Both
}

func (n NullFieldIndicator) convertsEmpty(fromQuotedField bool) bool {
	if fromQuotedField {
		return n.EmptyQuotesAreNull()
	}
	return n.EmptySeparatorsAreNull()
}

// Config holds the immutable settings of a parser.
type Config struct {
	Variant                 Variant            `mapstructure:"parser"`
	Separator               rune               `mapstructure:"separator"`
	Quote                   rune               `mapstructure:"quote"`
	Escape                  rune               `mapstructure:"escape"`
	StrictQuotes            bool               `mapstructure:"strict-quotes"`
	IgnoreLeadingWhiteSpace bool               `mapstructure:"ignore-leading-whitespace"`
	IgnoreQuotations        bool               `mapstructure:"ignore-quotations"`
	NullFieldIndicator      NullFieldIndicator `mapstructure:"null-fields"`
	Locale                  language.Tag       `mapstructure:"locale"`

	// Catalog overrides DefaultCatalog for error messages.
	Catalog Catalog `mapstructure:"-"`
}

// DefaultConfig returns the settings of a default LenientParser.
func DefaultConfig() Config {
	return Config{
		Variant:                 Lenient,
		Separator:               DefaultSeparator,
		Quote:                   DefaultQuote,
		Escape:                  DefaultEscape,
		IgnoreLeadingWhiteSpace: true,
		NullFieldIndicator:      Neither,
		Locale:                  language.English,
	}
}

// Validate checks the special characters. The escape character only takes part for the lenient variant.
func (c Config) Validate() error {
	if c.Separator == NullCharacter {
		return &ConfigError{Err: ErrSeparatorUndefined, Message: c.localize(MsgDefineSeparator, nil)}
	}

	escape := c.Escape
	if c.Variant == RFC4180 {
		escape = NullCharacter
	}
	if anyCharactersAreTheSame(c.Separator, c.Quote, escape) {
		return &ConfigError{Err: ErrConfigConflict, Message: c.localize(MsgSpecialCharactersMustDiffer, nil)}
	}
	return nil
}

func (c Config) catalog() Catalog {
	if c.Catalog != nil {
		return c.Catalog
	}
	return DefaultCatalog()
}

func (c Config) localize(id string, data map[string]any) string {
	return c.catalog().Localize(c.Locale, id, data)
}

// New builds the parser selected by cfg.Variant.
func New(cfg Config) (Parser, error) {
	switch cfg.Variant {
	case Lenient:
		return NewLenientParser(cfg)
	case RFC4180:
		return NewRFC4180Parser(cfg)
	default:
		return nil, &ConfigError{Err: fmt.Errorf("linecsv: unknown parser variant %v", cfg.Variant)}
	}
}

// ParserBuilder collects parser settings starting from DefaultConfig.
type ParserBuilder struct {
	cfg Config
}

func NewParserBuilder() *ParserBuilder {
	return &ParserBuilder{cfg: DefaultConfig()}
}

func (b *ParserBuilder) WithVariant(v Variant) *ParserBuilder {
	b.cfg.Variant = v
	return b
}

func (b *ParserBuilder) WithSeparator(r rune) *ParserBuilder {
	b.cfg.Separator = r
	return b
}

func (b *ParserBuilder) WithQuoteChar(r rune) *ParserBuilder {
	b.cfg.Quote = r
	return b
}

func (b *ParserBuilder) WithEscapeChar(r rune) *ParserBuilder {
	b.cfg.Escape = r
	return b
}

func (b *ParserBuilder) WithStrictQuotes(v bool) *ParserBuilder {
	b.cfg.StrictQuotes = v
	return b
}

func (b *ParserBuilder) WithIgnoreLeadingWhiteSpace(v bool) *ParserBuilder {
	b.cfg.IgnoreLeadingWhiteSpace = v
	return b
}

func (b *ParserBuilder) WithIgnoreQuotations(v bool) *ParserBuilder {
	b.cfg.IgnoreQuotations = v
	return b
}

func (b *ParserBuilder) WithFieldAsNull(n NullFieldIndicator) *ParserBuilder {
	b.cfg.NullFieldIndicator = n
	return b
}

// WithErrorLocale selects the language of error messages.
func (b *ParserBuilder) WithErrorLocale(tag language.Tag) *ParserBuilder {
	b.cfg.Locale = tag
	return b
}

func (b *ParserBuilder) WithCatalog(c Catalog) *ParserBuilder {
	b.cfg.Catalog = c
	return b
}

// Config returns a copy of the collected settings.
func (b *ParserBuilder) Config() Config {
	return b.cfg
}

// Build validates the settings and constructs the parser.
func (b *ParserBuilder) Build() (Parser, error) {
	return New(b.cfg)
}
