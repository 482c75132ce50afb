package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voice-assistant/internal/infra/audio"
)

func newTriggerCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Start a recording in the running assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}

			reply, err := audio.SendTrigger(cfg.Audio.TriggerSocket)
			if err != nil {
				return fmt.Errorf("is the assistant running? %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}
