package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/oleg578/linecsv"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	BindOutputFlags(fs)
	fs.String("output", OutputJSON, "")
	fs.Int("jobs", 0, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func load(t *testing.T, fs *pflag.FlagSet, configFile string) *Options {
	t.Helper()

	v, err := NewViper(fs, configFile)
	require.NoError(t, err)
	opts, err := Load(v)
	require.NoError(t, err)
	return opts
}

func TestLoadDefaults(t *testing.T) {
	opts := load(t, newFlagSet(t), "")

	want := linecsv.DefaultConfig()
	assert.Equal(t, want, opts.ParserConfig())
	assert.Equal(t, OutputJSON, opts.Output)
	assert.Equal(t, -1, opts.FieldsPerRecord)
	assert.Zero(t, opts.MultilineLimit)

	p, err := opts.NewParser()
	require.NoError(t, err)
	assert.IsType(t, &linecsv.LenientParser{}, p)
}

func TestLoadFlags(t *testing.T) {
	fs := newFlagSet(t,
		"--parser", "rfc4180",
		"--separator", "tab",
		"--quote", "'",
		"--escape", "none",
		"--strict-quotes",
		"--ignore-leading-whitespace=false",
		"--null-fields", "both",
		"--locale", "de",
		"--multiline-limit", "5",
		"--skip-lines", "2",
		"--keep-cr",
		"--fields-per-record", "0",
		"--output", "table",
	)
	opts := load(t, fs, "")

	cfg := opts.ParserConfig()
	assert.Equal(t, linecsv.RFC4180, cfg.Variant)
	assert.Equal(t, '\t', cfg.Separator)
	assert.Equal(t, '\'', cfg.Quote)
	assert.Equal(t, linecsv.NullCharacter, cfg.Escape)
	assert.True(t, cfg.StrictQuotes)
	assert.False(t, cfg.IgnoreLeadingWhiteSpace)
	assert.Equal(t, linecsv.Both, cfg.NullFieldIndicator)
	assert.Equal(t, language.German, cfg.Locale)
	assert.Equal(t, 5, opts.MultilineLimit)
	assert.Equal(t, 2, opts.SkipLines)
	assert.True(t, opts.KeepCR)
	assert.Zero(t, opts.FieldsPerRecord)
	assert.Equal(t, OutputTable, opts.Output)

	r := linecsv.NewReader(os.Stdin, nil)
	opts.ConfigureReader(r)
	assert.Equal(t, 5, r.MultilineLimit)
	assert.Equal(t, 2, r.SkipLines)
	assert.True(t, r.KeepCR)
	assert.Zero(t, r.FieldsPerRecord)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LINECSV_SEPARATOR", ";")
	t.Setenv("LINECSV_SKIP_LINES", "3")
	t.Setenv("LINECSV_STRICT_QUOTES", "true")

	opts := load(t, newFlagSet(t, "--skip-lines", "1"), "")
	assert.Equal(t, ';', opts.Separator)
	assert.True(t, opts.StrictQuotes)
	// Flags set on the command line win over the environment.
	assert.Equal(t, 1, opts.SkipLines)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialect.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
parser: rfc4180
separator: "|"
null-fields: empty-quotes
multiline-limit: 10
out-separator: ";"
quote-all: true
`), 0o600))

	opts := load(t, newFlagSet(t), path)
	assert.Equal(t, linecsv.RFC4180, opts.Variant)
	assert.Equal(t, '|', opts.Separator)
	assert.Equal(t, linecsv.EmptyQuotes, opts.NullFieldIndicator)
	assert.Equal(t, 10, opts.MultilineLimit)
	assert.True(t, opts.QuoteAll)

	out, err := opts.OutputConfig()
	require.NoError(t, err)
	assert.Equal(t, ';', out.Separator)
	assert.Equal(t, linecsv.RFC4180, out.Variant)
}

func TestLoadConfigFileFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("separator: \":\"\n"), 0o600))
	t.Setenv("LINECSV_CONFIG", path)

	opts := load(t, newFlagSet(t), "")
	assert.Equal(t, ':', opts.Separator)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configFile string
	}{
		{name: "separatorTooLong", args: []string{"--separator", "ab"}},
		{name: "unknownVariant", args: []string{"--parser", "excel"}},
		{name: "unknownNullPolicy", args: []string{"--null-fields", "sometimes"}},
		{name: "unknownOutput", args: []string{"--output", "xml"}},
		{name: "negativeJobs", args: []string{"--jobs", "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewViper(newFlagSet(t, tt.args...), "")
			require.NoError(t, err)
			_, err = Load(v)
			assert.Error(t, err)
		})
	}

	_, err := NewViper(newFlagSet(t), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOutputConfig(t *testing.T) {
	t.Parallel()

	opts := &Options{Config: linecsv.DefaultConfig()}
	out, err := opts.OutputConfig()
	require.NoError(t, err)
	assert.Equal(t, linecsv.DefaultConfig(), out)

	opts.OutParser = "rfc4180"
	opts.OutSeparator = "space"
	opts.OutQuote = "'"
	opts.OutEscape = "none"
	out, err = opts.OutputConfig()
	require.NoError(t, err)
	assert.Equal(t, linecsv.RFC4180, out.Variant)
	assert.Equal(t, ' ', out.Separator)
	assert.Equal(t, '\'', out.Quote)
	assert.Equal(t, linecsv.NullCharacter, out.Escape)
	// The input dialect is untouched.
	assert.Equal(t, linecsv.DefaultSeparator, opts.Separator)

	opts.OutQuote = "xy"
	_, err = opts.OutputConfig()
	assert.Error(t, err)

	opts.OutQuote = ""
	opts.OutParser = "excel"
	_, err = opts.OutputConfig()
	assert.Error(t, err)
}
