package application

import "context"

type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}

// Cue is a short sound played when the assistant starts listening.
type Cue interface {
	Play(ctx context.Context) error
}

type NoopCue struct{}

func (NoopCue) Play(_ context.Context) error {
	return nil
}
