package domain

import "errors"

var (
	// ErrListenTimeout means no speech started before the listen window closed.
	ErrListenTimeout = errors.New("no speech detected before timeout")
	// ErrUnintelligible means audio was captured but could not be turned into text.
	ErrUnintelligible = errors.New("speech could not be understood")
	// ErrConnection means the speech service could not be reached.
	ErrConnection = errors.New("speech service unreachable")
)
