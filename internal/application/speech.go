package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is a no-op speech-to-text client for text-only sources.
// It returns an error if called with actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set stt.provider to enable audio transcription")
}

type TextToSpeech interface {
	Speak(ctx context.Context, text string) error
}

type NoopTTS struct{}

func (n *NoopTTS) Speak(_ context.Context, _ string) error {
	return nil
}

// Responder picks the answer to a transcribed utterance.
type Responder interface {
	GetResponse(query string) string
}
