//go:build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audioconv"
)

const framesPerBuffer = 1024

// MicrophoneSource records one phrase from the default input device each
// time a trigger arrives.
type MicrophoneSource struct {
	cfg      MicrophoneConfig
	trigger  <-chan struct{}
	onListen func()
	logger   *slog.Logger

	stream *portaudio.Stream
	buffer []int16
}

func NewMicrophoneSource(cfg MicrophoneConfig, trigger <-chan struct{}, onListen func(), logger *slog.Logger) *MicrophoneSource {
	cfg.setDefaults()
	return &MicrophoneSource{
		cfg:      cfg,
		trigger:  trigger,
		onListen: onListen,
		logger:   logger,
		buffer:   make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), len(m.buffer), m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	m.logger.Info("microphone ready", "sampleRate", m.cfg.SampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
	portaudio.Terminate()
	return nil
}

func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case _, ok := <-m.trigger:
		if !ok {
			return nil, application.ErrSourceClosed
		}
	}

	if m.onListen != nil {
		m.onListen()
	}

	if err := m.stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer m.stream.Stop()

	samples, err := m.record(ctx)
	if err != nil {
		return nil, err
	}

	m.logger.Info("recorded phrase", "samples", len(samples))
	return audioconv.EncodeWAV(samples, m.cfg.SampleRate)
}

func (m *MicrophoneSource) record(ctx context.Context) ([]int16, error) {
	var (
		onsetLimit = framesFor(m.cfg.ListenTimeout, m.cfg.SampleRate, len(m.buffer))
		phraseMax  = framesFor(m.cfg.PhraseLimit, m.cfg.SampleRate, len(m.buffer))
		pauseMax   = framesFor(m.cfg.PauseDuration, m.cfg.SampleRate, len(m.buffer))

		samples  []int16
		waited   int
		recorded int
		quiet    int
	)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		silent := isSilent(m.buffer, m.cfg.SilenceThreshold)

		if samples == nil {
			if silent {
				waited++
				if waited >= onsetLimit {
					return nil, domain.ErrListenTimeout
				}
				continue
			}
			samples = make([]int16, 0, phraseMax*len(m.buffer))
		}

		samples = append(samples, m.buffer...)
		recorded++

		if silent {
			quiet++
		} else {
			quiet = 0
		}

		if quiet >= pauseMax || recorded >= phraseMax {
			return samples, nil
		}
	}
}
