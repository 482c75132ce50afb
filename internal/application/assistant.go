package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"voice-assistant/internal/domain"
)

// Greeting is the first bot line of every session.
const Greeting = "Halo! Tekan tombol 'Rekam' untuk berbicara."

// ErrSourceClosed is returned by audio sources that will never produce
// another command.
var ErrSourceClosed = errors.New("audio source closed")

type Assistant struct {
	audio      AudioSource
	stt        SpeechToText
	responder  Responder
	tts        TextToSpeech
	transcript Transcript
	logger     *slog.Logger
}

func NewAssistant(
	audio AudioSource,
	stt SpeechToText,
	responder Responder,
	tts TextToSpeech,
	transcript Transcript,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		audio:      audio,
		stt:        stt,
		responder:  responder,
		tts:        tts,
		transcript: transcript,
		logger:     logger,
	}
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting audio source", "source", a.audio.Name())
	if err := a.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}
	defer a.audio.Stop()

	a.transcript.Publish(domain.NewMessage(domain.SpeakerBot, Greeting))
	a.setStatus(domain.StatusReady)

	a.logger.Info("assistant ready, listening for commands")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := a.processOneCommand(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, ErrSourceClosed):
			return err
		case errors.Is(err, domain.ErrListenTimeout), errors.Is(err, domain.ErrUnintelligible):
			a.logger.Warn("no usable speech", "error", err)
		default:
			a.logger.Error("processing command", "error", err)
		}
	}
}

func (a *Assistant) processOneCommand(ctx context.Context) error {
	audioData, err := a.audio.NextCommand(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return a.fail(fmt.Errorf("getting audio: %w", err))
	}

	if len(audioData) == 0 {
		return nil
	}

	if err := a.respond(ctx, audioData); err != nil {
		return a.fail(err)
	}

	a.setStatus(domain.StatusReady)
	return nil
}

func (a *Assistant) respond(ctx context.Context, audioData []byte) error {
	a.setStatus(domain.StatusProcessing)

	var text string

	if directText, isText := isTextCommand(audioData); isText {
		a.logger.Info("received text command directly", "text", directText)
		text = directText
	} else {
		a.logger.Info("received audio", "bytes", len(audioData))

		var err error
		text, err = a.stt.Transcribe(ctx, audioData)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}

		a.logger.Info("transcribed", "text", text)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrUnintelligible
	}

	a.transcript.Publish(domain.NewMessage(domain.SpeakerUser, text))

	answer := a.responder.GetResponse(text)
	a.transcript.Publish(domain.NewMessage(domain.SpeakerBot, answer))
	a.logger.Info("answered", "query", text, "answer", answer)

	a.setStatus(domain.StatusSpeaking)
	if err := a.tts.Speak(ctx, answer); err != nil {
		a.logger.Error("speaking answer", "error", err)
	}

	return nil
}

// fail shows the status matching err, then returns to ready.
func (a *Assistant) fail(err error) error {
	if status, ok := StatusForError(err); ok {
		a.setStatus(status)
	}
	a.setStatus(domain.StatusReady)
	return err
}

func (a *Assistant) setStatus(status domain.Status) {
	a.transcript.Publish(domain.NewStatus(status))
}

// StatusForError maps capture and recognition failures to the status shown
// to the user. Other errors have no dedicated status.
func StatusForError(err error) (domain.Status, bool) {
	switch {
	case errors.Is(err, domain.ErrListenTimeout):
		return domain.StatusTimeout, true
	case errors.Is(err, domain.ErrUnintelligible):
		return domain.StatusUnclear, true
	case errors.Is(err, domain.ErrConnection):
		return domain.StatusNetworkDown, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.StatusNetworkDown, true
	}

	return "", false
}

func isTextCommand(data []byte) (string, bool) {
	if len(data) > len(domain.TextCommandPrefix) && string(data[:len(domain.TextCommandPrefix)]) == domain.TextCommandPrefix {
		return string(data[len(domain.TextCommandPrefix):]), true
	}
	return "", false
}
