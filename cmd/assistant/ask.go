package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <text...>",
		Short: "Print the answer to a typed question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			engine, err := openEngine(cmd.Context(), cfg.Corpus, logger)
			if err != nil {
				return err
			}

			m := engine.Match(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, m.Response)
			if verbose {
				fmt.Fprintf(out, "score=%.4f index=%d matched=%t threshold=%.2f\n", m.Score, m.Index, m.Matched, engine.Threshold())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show score and matched row")
	return cmd
}
