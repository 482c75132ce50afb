package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"voice-assistant/internal/infra/espeak"
)

func newVoicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List text-to-speech voices and show which one would be used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}

			binary := cfg.TTS.Binary
			voices, err := espeak.ListVoices(cmd.Context(), binary)
			if err != nil {
				return err
			}

			selected, ok := espeak.SelectVoice(voices, cfg.TTS.VoiceHint)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tLANGUAGE\tNAME")
			for _, v := range voices {
				mark := ""
				if ok && v == selected {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", mark, v.Language, v.Name)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no voice matches %q, the default voice will be used\n", cfg.TTS.VoiceHint)
			}
			return nil
		},
	}
}
