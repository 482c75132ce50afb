//go:build !whisper

// Package whisper transcribes speech offline with whisper.cpp. Builds without
// the whisper tag get a transcriber that always fails to load.
package whisper

import (
	"context"
	"errors"
)

var ErrNotBuilt = errors.New("local whisper support not built; rebuild with -tags whisper")

type LocalTranscriber struct{}

func NewLocalTranscriber(modelPath, language string) (*LocalTranscriber, error) {
	return nil, ErrNotBuilt
}

func (t *LocalTranscriber) Close() error { return nil }

func (t *LocalTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return "", ErrNotBuilt
}
