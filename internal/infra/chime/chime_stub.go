//go:build !speaker

// Package chime plays the listening cue. Builds without the speaker tag have
// no audio output and reject chime files.
package chime

import (
	"context"
	"errors"
)

var ErrNotBuilt = errors.New("chime playback not built; rebuild with -tags speaker")

type Chime struct{}

func New(path string) (*Chime, error) {
	return nil, ErrNotBuilt
}

func (c *Chime) Play(context.Context) error {
	return ErrNotBuilt
}
