package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"voice-assistant/config"
)

type rootOptions struct {
	configPath string
	envPath    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "assistant",
		Short:        "Indonesian voice assistant answering from a fixed conversation table",
		SilenceUsage: true,
		Long: `assistant records a question, transcribes it, and answers with the closest
canned response from the conversation table. Run without a subcommand to
start the interactive assistant.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistant(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to config file")
	flags.StringVarP(&opts.envPath, "env", "e", ".env", "path to env file")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCmd(opts),
		newAskCmd(opts),
		newCheckCmd(opts),
		newTriggerCmd(opts),
		newVoicesCmd(opts),
	)

	return cmd
}

// load reads the env file and the config, then builds the logger. A missing
// config file is fine unless --config was given explicitly.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if err := config.LoadEnv(o.envPath); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, nil, err
		}
		cfg = config.Default()
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, newLogger(cfg.Log, cmd.ErrOrStderr()), nil
}
