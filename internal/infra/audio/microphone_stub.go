//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"log/slog"
)

var ErrMicrophoneNotBuilt = errors.New("microphone capture not built; rebuild with -tags portaudio")

// MicrophoneSource is unavailable without portaudio; Start always fails.
type MicrophoneSource struct {
	logger *slog.Logger
}

func NewMicrophoneSource(_ MicrophoneConfig, _ <-chan struct{}, _ func(), logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{logger: logger}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	return ErrMicrophoneNotBuilt
}

func (m *MicrophoneSource) Stop() error {
	return nil
}

func (m *MicrophoneSource) NextCommand(_ context.Context) ([]byte, error) {
	return nil, ErrMicrophoneNotBuilt
}
