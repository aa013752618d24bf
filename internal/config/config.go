// Package config resolves the CLI's dialect and reader options from flags, LINECSV_* environment variables
// and an optional YAML config file, and turns them into linecsv parser settings.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oleg578/linecsv"
)

// EnvPrefix prefixes environment variables; flag dashes become underscores (LINECSV_SKIP_LINES).
const EnvPrefix = "LINECSV"

// Options holds every setting shared by the CLI commands.
type Options struct {
	linecsv.Config `mapstructure:",squash"`

	MultilineLimit  int  `mapstructure:"multiline-limit"`
	SkipLines       int  `mapstructure:"skip-lines"`
	KeepCR          bool `mapstructure:"keep-cr"`
	FieldsPerRecord int  `mapstructure:"fields-per-record"`

	Output string `mapstructure:"output"`
	Jobs   int    `mapstructure:"jobs"`

	// Output dialect of convert. Empty values inherit the input dialect.
	OutParser    string `mapstructure:"out-parser"`
	OutSeparator string `mapstructure:"out-separator"`
	OutQuote     string `mapstructure:"out-quote"`
	OutEscape    string `mapstructure:"out-escape"`
	QuoteAll     bool   `mapstructure:"quote-all"`
	CRLF         bool   `mapstructure:"crlf"`

	LogLevel string `mapstructure:"log-level"`
}

// Output formats of the parse command.
const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
	OutputCSV   = "csv"
)

// BindFlags attaches the dialect and reader flags to fs and returns the flag names.
func BindFlags(fs *pflag.FlagSet) []string {
	def := linecsv.DefaultConfig()
	var names []string
	fs.String("parser", def.Variant.String(), "Parser variant: lenient or rfc4180")
	names = append(names, "parser")
	fs.String("separator", string(def.Separator), "Field separator (a single character, \"tab\" or \"space\")")
	names = append(names, "separator")
	fs.String("quote", string(def.Quote), "Quote character, or \"none\" to disable quoting")
	names = append(names, "quote")
	fs.String("escape", string(def.Escape), "Escape character of the lenient parser, or \"none\"")
	names = append(names, "escape")
	fs.Bool("strict-quotes", def.StrictQuotes, "Drop characters outside quotes")
	names = append(names, "strict-quotes")
	fs.Bool("ignore-leading-whitespace", def.IgnoreLeadingWhiteSpace, "Ignore whitespace before a quote that opens a field")
	names = append(names, "ignore-leading-whitespace")
	fs.Bool("ignore-quotations", def.IgnoreQuotations, "Keep quote characters in field values")
	names = append(names, "ignore-quotations")
	fs.String("null-fields", def.NullFieldIndicator.String(), "Empty fields reported as null: neither, empty-separators, empty-quotes or both")
	names = append(names, "null-fields")
	fs.String("locale", def.Locale.String(), "Language of error messages (BCP 47 tag)")
	names = append(names, "locale")
	fs.Int("multiline-limit", 0, "Maximum physical lines per record, 0 for unlimited")
	names = append(names, "multiline-limit")
	fs.Int("skip-lines", 0, "Lines to skip before the first record")
	names = append(names, "skip-lines")
	fs.Bool("keep-cr", false, "Keep carriage returns at line ends")
	names = append(names, "keep-cr")
	fs.Int("fields-per-record", -1, "Expected fields per record: 0 takes the first record's width, negative disables the check")
	names = append(names, "fields-per-record")
	return names
}

// BindOutputFlags attaches the output dialect flags used by convert.
func BindOutputFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.String("out-parser", "", "Output parser variant, defaults to --parser")
	names = append(names, "out-parser")
	fs.String("out-separator", "", "Output separator, defaults to --separator")
	names = append(names, "out-separator")
	fs.String("out-quote", "", "Output quote character, defaults to --quote")
	names = append(names, "out-quote")
	fs.String("out-escape", "", "Output escape character, defaults to --escape")
	names = append(names, "out-escape")
	fs.Bool("quote-all", false, "Quote every field")
	names = append(names, "quote-all")
	fs.Bool("crlf", false, "Terminate records with CRLF")
	names = append(names, "crlf")
	return names
}

// NewViper binds fs and the environment. configFile selects an explicit config file; otherwise linecsv.yaml
// is looked up in the working directory and the user config directory.
func NewViper(fs *pflag.FlagSet, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("linecsv")
		v.SetConfigType("yaml")
		for _, dir := range configSearchDirs() {
			v.AddConfigPath(dir)
		}
	}
	if err := readConfigFile(v, configFile != ""); err != nil {
		return nil, pkgerrors.Wrap(err, "read config")
	}
	return v, nil
}

// Load decodes the resolved settings of v into Options.
func Load(v *viper.Viper) (*Options, error) {
	opts := &Options{Config: linecsv.DefaultConfig()}
	if err := decode(v.AllSettings(), opts); err != nil {
		return nil, pkgerrors.Wrap(err, "decode options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate checks the CLI-level settings; the dialect is validated when the parser is built.
func (o *Options) Validate() error {
	switch o.Output {
	case "", OutputJSON, OutputYAML, OutputTable, OutputCSV:
	default:
		return pkgerrors.Errorf("unknown output format %q (expected json, yaml, table, or csv)", o.Output)
	}
	if o.Jobs < 0 {
		return pkgerrors.Errorf("jobs must not be negative, got %d", o.Jobs)
	}
	return nil
}

// ParserConfig returns the input dialect.
func (o *Options) ParserConfig() linecsv.Config {
	return o.Config
}

// NewParser builds the input parser.
func (o *Options) NewParser() (linecsv.Parser, error) {
	return linecsv.New(o.ParserConfig())
}

// OutputConfig returns the output dialect: the input dialect with the out-* overrides applied.
func (o *Options) OutputConfig() (linecsv.Config, error) {
	cfg := o.Config
	if o.OutParser != "" {
		if err := cfg.Variant.UnmarshalText([]byte(o.OutParser)); err != nil {
			return cfg, err
		}
	}
	for _, override := range []struct {
		value string
		dst   *rune
	}{
		{o.OutSeparator, &cfg.Separator},
		{o.OutQuote, &cfg.Quote},
		{o.OutEscape, &cfg.Escape},
	} {
		if override.value == "" {
			continue
		}
		r, err := linecsv.ParseRune(override.value)
		if err != nil {
			return cfg, err
		}
		*override.dst = r
	}
	return cfg, nil
}

// ConfigureReader applies the reader settings to r.
func (o *Options) ConfigureReader(r *linecsv.Reader) {
	r.MultilineLimit = o.MultilineLimit
	r.SkipLines = o.SkipLines
	r.KeepCR = o.KeepCR
	r.FieldsPerRecord = o.FieldsPerRecord
}

func decode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			runeHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result: output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

var runeType = reflect.TypeOf(linecsv.NullCharacter)

// runeHookFunc decodes special characters with linecsv.ParseRune.
func runeHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != runeType {
			return data, nil
		}
		return linecsv.ParseRune(reflect.ValueOf(data).String())
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "linecsv"))
	}
	return dirs
}
