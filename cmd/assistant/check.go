package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the conversation table and report whether it is usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			engine, err := openEngine(cmd.Context(), cfg.Corpus, logger)
			if err != nil {
				return err
			}

			if !engine.Ready() {
				return errors.New("corpus not ready: " + cfg.Corpus.Path)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "corpus:     %s\n", cfg.Corpus.Path)
			fmt.Fprintf(out, "entries:    %d\n", engine.Size())
			fmt.Fprintf(out, "vocabulary: %d\n", engine.VocabularySize())
			fmt.Fprintf(out, "threshold:  %.2f\n", engine.Threshold())
			return nil
		},
	}
}
