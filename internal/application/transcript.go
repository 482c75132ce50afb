package application

import (
	"log/slog"
	"sync"

	"voice-assistant/internal/domain"
)

// Transcript receives chat lines and status changes.
type Transcript interface {
	Publish(event domain.Event)
}

// TranscriptBus queues events on a channel and hands them to every sink from
// a single goroutine, in publish order. Publish never blocks on a slow sink;
// when the queue is full the event is dropped and logged.
type TranscriptBus struct {
	sinks  []Transcript
	events chan domain.Event
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewTranscriptBus(logger *slog.Logger, sinks ...Transcript) *TranscriptBus {
	b := &TranscriptBus{
		sinks:  sinks,
		events: make(chan domain.Event, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *TranscriptBus) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	select {
	case b.events <- event:
	default:
		b.logger.Warn("transcript queue full, dropping event", "kind", event.Kind, "text", event.Text)
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (b *TranscriptBus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	b.mu.Unlock()

	<-b.done
}

func (b *TranscriptBus) run() {
	defer close(b.done)
	for event := range b.events {
		for _, sink := range b.sinks {
			sink.Publish(event)
		}
	}
}
