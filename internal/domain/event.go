package domain

import (
	"time"

	"github.com/google/uuid"
)

// TextCommandPrefix is the marker used to indicate text commands (vs audio)
const TextCommandPrefix = "__TEXT__:"

type EventKind string

const (
	EventStatus  EventKind = "status"
	EventMessage EventKind = "message"
)

type Speaker string

const (
	SpeakerUser Speaker = "Anda"
	SpeakerBot  Speaker = "Bot"
)

// Event is one entry of the chat transcript.
type Event struct {
	ID      string    `json:"id"`
	Kind    EventKind `json:"kind"`
	Speaker Speaker   `json:"speaker,omitempty"`
	Text    string    `json:"text"`
	Status  Status    `json:"status,omitempty"`
	Time    time.Time `json:"time"`
}

func NewMessage(speaker Speaker, text string) Event {
	return Event{
		ID:      uuid.NewString(),
		Kind:    EventMessage,
		Speaker: speaker,
		Text:    text,
		Time:    time.Now(),
	}
}

func NewStatus(status Status) Event {
	return Event{
		ID:     uuid.NewString(),
		Kind:   EventStatus,
		Text:   status.Label(),
		Status: status,
		Time:   time.Now(),
	}
}
