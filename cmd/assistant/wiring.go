package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"voice-assistant/config"
	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audio"
	"voice-assistant/internal/infra/chime"
	"voice-assistant/internal/infra/corpus"
	"voice-assistant/internal/infra/espeak"
	"voice-assistant/internal/infra/openai"
	"voice-assistant/internal/infra/proxy"
	"voice-assistant/internal/infra/whisper"
	"voice-assistant/internal/matcher"
)

func openEngine(ctx context.Context, cfg config.CorpusConfig, logger *slog.Logger) (*matcher.Engine, error) {
	src, err := corpus.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	return matcher.Open(ctx, src,
		matcher.WithThreshold(cfg.ThresholdValue()),
		matcher.WithLogger(logger.With("component", "matcher")),
	), nil
}

// listenHook announces that the microphone is open and plays the cue.
func listenHook(ctx context.Context, transcript application.Transcript, cue application.Cue, logger *slog.Logger) func() {
	return func() {
		transcript.Publish(domain.NewStatus(domain.StatusListening))
		if err := cue.Play(ctx); err != nil {
			logger.Debug("playing listening cue", "error", err)
		}
	}
}

func buildAudioSource(cfg config.AudioConfig, triggers <-chan struct{}, onListen func(), logger *slog.Logger) (application.AudioSource, error) {
	switch cfg.Source {
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger), nil
	case "file":
		return audio.NewFileSource(cfg.FileDir), nil
	case "microphone":
		micCfg := audio.MicrophoneConfig{
			SampleRate:    cfg.SampleRate,
			ListenTimeout: cfg.ListenTimeoutDuration(logger),
			PhraseLimit:   cfg.PhraseLimitDuration(logger),
		}
		return audio.NewMicrophoneSource(micCfg, triggers, onListen, logger), nil
	default:
		return nil, fmt.Errorf("unknown audio.source %q", cfg.Source)
	}
}

func buildCue(path string, logger *slog.Logger) application.Cue {
	if path == "" {
		return application.NoopCue{}
	}

	c, err := chime.New(path)
	if err != nil {
		logger.Warn("listening cue disabled", "path", path, "error", err)
		return application.NoopCue{}
	}
	return c
}

// buildSTT returns the recognizer and a closer for its resources.
func buildSTT(cfg *config.Config, logger *slog.Logger) (application.SpeechToText, io.Closer, error) {
	switch cfg.STT.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			logger.Warn("openai.api_key not set, only text commands will be understood")
			return &application.NoopSTT{}, nopCloser{}, nil
		}

		whisperCfg := openai.WhisperConfig{
			APIKey:   cfg.OpenAI.APIKey,
			BaseURL:  cfg.OpenAI.BaseURL,
			Model:    cfg.OpenAI.Model,
			Language: cfg.STT.Language,
		}
		if cfg.OpenAI.Proxy != "" {
			client, err := proxy.NewSocksClient(cfg.OpenAI.Proxy, 120*time.Second)
			if err != nil {
				return nil, nil, fmt.Errorf("openai proxy: %w", err)
			}
			whisperCfg.HTTPClient = client
			logger.Info("openai requests go through socks proxy", "proxy", cfg.OpenAI.Proxy)
		}
		return openai.NewWhisperClient(whisperCfg), nopCloser{}, nil

	case "whisper":
		t, err := whisper.NewLocalTranscriber(cfg.STT.ModelPath, cfg.STT.Language)
		if err != nil {
			return nil, nil, err
		}
		return t, t, nil

	default:
		return &application.NoopSTT{}, nopCloser{}, nil
	}
}

func buildTTS(ctx context.Context, cfg config.TTSConfig, logger *slog.Logger) application.TextToSpeech {
	if cfg.Engine != "espeak" {
		return &application.NoopTTS{}
	}

	return espeak.NewSpeaker(ctx, espeak.Config{
		Binary:    cfg.Binary,
		VoiceHint: cfg.VoiceHint,
		Rate:      cfg.Rate,
	}, logger.With("component", "tts"))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
