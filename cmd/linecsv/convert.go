package main

import (
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/oleg578/linecsv"
	"github.com/oleg578/linecsv/internal/config"
)

func newConvertCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [FILE...]",
		Short: "Re-render records in another dialect",
		Long:  "convert reads records with the input dialect and writes them to stdout with the --out-* dialect. Files are concatenated in argument order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.load(cmd)
			if err != nil {
				return err
			}
			outCfg, err := s.opts.OutputConfig()
			if err != nil {
				return pkgerrors.Wrap(err, "output dialect")
			}
			p, err := linecsv.New(outCfg)
			if err != nil {
				return err
			}

			w := linecsv.NewWriter(cmd.OutOrStdout(), p)
			w.UseCRLF = s.opts.CRLF
			w.AlwaysQuote = s.opts.QuoteAll
			for _, name := range files(args) {
				if _, err := s.eachRecord(cmd.Context(), name, w.Write); err != nil {
					_ = w.Flush()
					return pkgerrors.Wrap(err, name)
				}
			}
			return w.Flush()
		},
	}
	config.BindOutputFlags(cmd.Flags())
	return cmd
}
