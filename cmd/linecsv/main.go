// main.go bootstraps linecsv: it builds the root Cobra command and executes it with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/config"
	"github.com/oleg578/linecsv/internal/input"
	"github.com/oleg578/linecsv/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(os.Stderr, err)
	if err != nil {
		os.Exit(1)
	}
}

type globalOptions struct {
	configFile string
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "linecsv",
		Short:         "Tokenize CSV files line by line with a lenient or an RFC 4180 parser",
		Long:          "linecsv reads CSV files one physical line at a time, joining lines while a quoted field is open.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Path to a YAML config file (defaults to $LINECSV_CONFIG, then ./linecsv.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	config.BindFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		newParseCommand(g),
		newConvertCommand(g),
		newCheckCommand(g),
	)
	cmd.Example = `  # Print the records of a semicolon separated file as a table
  linecsv parse --separator ';' -o table data.csv

  # Re-render a lenient file as RFC 4180 with CRLF line ends
  linecsv convert --out-parser rfc4180 --crlf legacy.csv.gz > clean.csv

  # Validate several files, failing on records spanning more than 20 lines
  linecsv check --multiline-limit 20 *.csv`
	return cmd
}

// session is what every command resolves before it runs.
type session struct {
	opts   *config.Options
	logger logr.Logger
}

func (g *globalOptions) load(cmd *cobra.Command) (*session, error) {
	v, err := config.NewViper(cmd.Flags(), g.configFile)
	if err != nil {
		return nil, err
	}
	opts, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(opts.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	// The parser is built once up front so dialect errors surface before any file is opened.
	if _, err := opts.NewParser(); err != nil {
		return nil, err
	}
	return &session{opts: opts, logger: logger}, nil
}

// newReader builds a parser and reader for one stream.
func (s *session) newReader(src io.Reader, name string) (*linecsv.Reader, error) {
	p, err := s.opts.NewParser()
	if err != nil {
		return nil, err
	}
	r := linecsv.NewReader(src, p)
	s.opts.ConfigureReader(r)
	r.Logger = s.logger.WithValues("file", name)
	return r, nil
}

// eachRecord streams the records of name into fn and returns the reader for its counters.
func (s *session) eachRecord(ctx context.Context, name string, fn func(linecsv.Record) error) (*linecsv.Reader, error) {
	rc, err := input.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := s.newReader(rc, name)
	if err != nil {
		return nil, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return r, err
		}
		if err := fn(record); err != nil {
			return r, err
		}
	}
	s.logger.V(1).Info("file read", "file", name, "records", r.RecordsRead(), "lines", r.LinesRead())
	return r, nil
}

func files(args []string) []string {
	if len(args) == 0 {
		return []string{input.Stdin}
	}
	return args
}

func handleError(w io.Writer, err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	var cfgErr *linecsv.ConfigError
	if errors.As(err, &cfgErr) {
		message = fmt.Sprintf("%s\nHint: check --separator, --quote and --escape.", err)
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}
