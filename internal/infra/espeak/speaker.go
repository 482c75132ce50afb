// Package espeak speaks answers aloud through the espeak-ng command.
package espeak

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultBinary = "espeak-ng"
	DefaultHint   = "indonesia"
	DefaultRate   = 145
)

type Config struct {
	Binary    string
	VoiceHint string
	Rate      int
}

type Speaker struct {
	mu     sync.Mutex
	binary string
	voice  string
	rate   int
	logger *slog.Logger
}

// NewSpeaker picks the voice matching cfg.VoiceHint. When none matches, or
// the voice list cannot be read, espeak's default voice is used.
func NewSpeaker(ctx context.Context, cfg Config, logger *slog.Logger) *Speaker {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.VoiceHint == "" {
		cfg.VoiceHint = DefaultHint
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}

	s := &Speaker{
		binary: cfg.Binary,
		rate:   cfg.Rate,
		logger: logger,
	}

	voices, err := ListVoices(ctx, cfg.Binary)
	if err != nil {
		logger.Warn("listing tts voices, using default voice", "error", err)
		return s
	}

	voice, ok := SelectVoice(voices, cfg.VoiceHint)
	if !ok {
		logger.Warn("no tts voice matches hint, using default voice", "hint", cfg.VoiceHint, "voices", len(voices))
		return s
	}

	logger.Info("tts voice selected", "name", voice.Name, "language", voice.Language)
	s.voice = voice.Language
	return s
}

func ListVoices(ctx context.Context, binary string) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, binary, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices: %w", binary, err)
	}
	return ParseVoices(bytes.NewReader(out))
}

// Voice returns the selected voice, or "" for espeak's default.
func (s *Speaker) Voice() string {
	return s.voice
}

func (s *Speaker) args(text string) []string {
	args := []string{"-s", strconv.Itoa(s.rate)}
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	return append(args, "--", text)
}

// Speak blocks until the utterance finishes. Calls are serialized.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binary, s.args(text)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", s.binary, err, msg)
		}
		return fmt.Errorf("%s: %w", s.binary, err)
	}
	return nil
}
