package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-runewidth"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const nullMarker = "<null>"

func newParseCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [FILE...]",
		Short: "Print the records of each file",
		Long:  "parse reads every file concurrently and prints its records as json, yaml, an aligned table or csv. Null fields print as null, or as " + nullMarker + " in tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd)
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), s, files(args), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("output", "o", config.OutputJSON, "Output format: json, yaml, table or csv")
	cmd.Flags().IntP("jobs", "j", 0, "Files parsed at the same time, 0 for all at once")
	return cmd
}

// fileRecords is the json and yaml document of one file.
type fileRecords struct {
	File    string      `json:"file" yaml:"file"`
	Records [][]*string `json:"records" yaml:"records"`
}

func runParse(ctx context.Context, s *session, names []string, out io.Writer) error {
	results := make([][]linecsv.Record, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	if s.opts.Jobs > 0 {
		eg.SetLimit(s.opts.Jobs)
	}
	for i, name := range names {
		i := i
		name := name
		eg.Go(func() error {
			var records []linecsv.Record
			_, err := s.eachRecord(egCtx, name, func(r linecsv.Record) error {
				records = append(records, r)
				return nil
			})
			if err != nil {
				return pkgerrors.Wrap(err, name)
			}
			results[i] = records
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	switch s.opts.Output {
	case config.OutputYAML:
		return writeYAML(out, names, results)
	case config.OutputTable:
		return writeTable(out, names, results)
	case config.OutputCSV:
		return writeCSV(out, s, results)
	default:
		return writeJSON(out, names, results)
	}
}

func documents(names []string, results [][]linecsv.Record) []fileRecords {
	docs := make([]fileRecords, len(names))
	for i, name := range names {
		docs[i] = fileRecords{File: name, Records: make([][]*string, len(results[i]))}
		for j, record := range results[i] {
			row := make([]*string, len(record))
			for k := range record {
				if !record[k].Null {
					row[k] = &record[k].Value
				}
			}
			docs[i].Records[j] = row
		}
	}
	return docs
}

func writeJSON(out io.Writer, names []string, results [][]linecsv.Record) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return pkgerrors.Wrap(enc.Encode(documents(names, results)), "write json")
}

func writeYAML(out io.Writer, names []string, results [][]linecsv.Record) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	for _, doc := range documents(names, results) {
		if err := enc.Encode(doc); err != nil {
			return pkgerrors.Wrap(err, "write yaml")
		}
	}
	return pkgerrors.Wrap(enc.Close(), "write yaml")
}

var controlEscaper = strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`)

func cellText(f linecsv.Field) string {
	if f.Null {
		return nullMarker
	}
	return controlEscaper.Replace(f.Value)
}

func writeTable(out io.Writer, names []string, results [][]linecsv.Record) error {
	for i, records := range results {
		if len(names) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "==> %s <==\n", names[i])
		}

		var widths []int
		for _, record := range records {
			for j, f := range record {
				w := runewidth.StringWidth(cellText(f))
				if j >= len(widths) {
					widths = append(widths, w)
				} else if w > widths[j] {
					widths[j] = w
				}
			}
		}

		for _, record := range records {
			cells := make([]string, len(record))
			for j, f := range record {
				text := cellText(f)
				if j == len(record)-1 {
					cells[j] = text
					continue
				}
				cells[j] = text + strings.Repeat(" ", widths[j]-runewidth.StringWidth(text))
			}
			if _, err := fmt.Fprintln(out, strings.Join(cells, "  ")); err != nil {
				return pkgerrors.Wrap(err, "write table")
			}
		}
	}
	return nil
}

func writeCSV(out io.Writer, s *session, results [][]linecsv.Record) error {
	p, err := s.opts.NewParser()
	if err != nil {
		return err
	}
	w := linecsv.NewWriter(out, p)
	w.AlwaysQuote = s.opts.QuoteAll
	w.UseCRLF = s.opts.CRLF
	for _, records := range results {
		if err := w.WriteAll(records); err != nil {
			return pkgerrors.Wrap(err, "write csv")
		}
	}
	return nil
}
