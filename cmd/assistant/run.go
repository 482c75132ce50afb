package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"voice-assistant/internal/application"
	"voice-assistant/internal/infra/audio"
	"voice-assistant/internal/infra/console"
	"voice-assistant/internal/infra/feed"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive assistant (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistant(cmd, opts)
		},
	}
}

func runAssistant(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}

	lock := flock.New(cfg.Audio.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another assistant is already running (lock: %s)", cfg.Audio.LockFile)
	}
	defer lock.Unlock()

	ctx := cmd.Context()

	engine, err := openEngine(ctx, cfg.Corpus, logger)
	if err != nil {
		return err
	}

	sinks := []application.Transcript{console.NewTranscript(cmd.OutOrStdout(), true)}

	if cfg.Feed.Addr != "" {
		hub := feed.NewHub(cfg.Feed.History, logger)
		server := feed.NewServer(cfg.Feed.Addr, hub, logger)
		if err := server.Start(); err != nil {
			return fmt.Errorf("starting transcript feed: %w", err)
		}
		defer server.Stop()
		sinks = append(sinks, hub)
	}

	bus := application.NewTranscriptBus(logger, sinks...)
	defer bus.Close()

	var triggers <-chan struct{}
	if cfg.Audio.Source == "microphone" {
		trigger := audio.NewTriggerServer(cfg.Audio.TriggerSocket, logger)
		if err := trigger.Start(); err != nil {
			return fmt.Errorf("starting trigger socket: %w", err)
		}
		defer trigger.Close()

		go pressOnEnter(ctx, cmd.InOrStdin(), trigger, logger)
		triggers = trigger.Triggers()
	}

	onListen := listenHook(ctx, bus, buildCue(cfg.Audio.Chime, logger), logger)

	source, err := buildAudioSource(cfg.Audio, triggers, onListen, logger)
	if err != nil {
		return err
	}

	stt, closer, err := buildSTT(cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	tts := buildTTS(ctx, cfg.TTS, logger)

	assistant := application.NewAssistant(source, stt, engine, tts, bus, logger)

	logger.Info("starting voice assistant",
		"audio_source", cfg.Audio.Source,
		"stt", cfg.STT.Provider,
		"corpus_ready", engine.Ready(),
		"corpus_entries", engine.Size(),
	)

	err = assistant.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// pressOnEnter treats each line on in as a press of the record button.
func pressOnEnter(ctx context.Context, in io.Reader, trigger *audio.TriggerServer, logger *slog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if !trigger.Fire() {
			logger.Debug("record already pending")
		}
	}
}
