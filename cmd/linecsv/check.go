package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oleg578/linecsv"
)

func newCheckCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [FILE...]",
		Short: "Report the first error of each file",
		Long:  "check reads every file to the end and reports the first error per file with its line and context. It exits non-zero when any file fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), s, files(args), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Files checked at the same time, 0 for all at once")
	return cmd
}

type checkResult struct {
	name    string
	records int
	lines   int
	err     error
}

func runCheck(ctx context.Context, s *session, names []string, out io.Writer) error {
	results := make([]checkResult, len(names))
	var eg errgroup.Group
	if s.opts.Jobs > 0 {
		eg.SetLimit(s.opts.Jobs)
	}
	for i, name := range names {
		i := i
		name := name
		eg.Go(func() error {
			res := checkResult{name: name}
			r, err := s.eachRecord(ctx, name, func(linecsv.Record) error { return nil })
			if r != nil {
				res.records = r.RecordsRead()
				res.lines = r.LinesRead()
			}
			res.err = err
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	okLabel := color.New(color.FgGreen, color.Bold)
	failLabel := color.New(color.FgRed, color.Bold)
	detail := color.New(color.Faint)
	failed := 0
	for _, res := range results {
		if res.err == nil {
			okLabel.Fprint(out, "OK  ")
			fmt.Fprintf(out, " %s: %d records, %d lines\n", res.name, res.records, res.lines)
			continue
		}
		failed++
		s.logger.V(1).Info("check failed", "file", res.name, "error", res.err.Error())
		failLabel.Fprint(out, "FAIL")
		fmt.Fprintf(out, " %s: %v\n", res.name, res.err)

		var limitErr *linecsv.MultilineLimitError
		var parseErr *linecsv.ParseError
		switch {
		case errors.As(res.err, &limitErr):
			detail.Fprintf(out, "     row %d, limit %d, record starts with %q\n", limitErr.Row, limitErr.Limit, firstLine(limitErr.Context))
		case errors.As(res.err, &parseErr) && parseErr.Text != "":
			detail.Fprintf(out, "     line %d, open field %q\n", parseErr.Line, firstLine(parseErr.Text))
		}
	}
	if failed > 0 {
		return pkgerrors.Errorf("%d of %d files failed the check", failed, len(results))
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
