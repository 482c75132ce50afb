//go:build whisper

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audioconv"
)

// LocalTranscriber runs a ggml whisper model in process.
type LocalTranscriber struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  uint
}

func NewLocalTranscriber(modelPath, language string) (*LocalTranscriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty whisper model path")
	}

	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading whisper model: %w", err)
	}

	if language == "" {
		language = "auto"
	}

	return &LocalTranscriber{
		model:    m,
		language: language,
		threads:  uint(runtime.NumCPU()),
	}, nil
}

func (t *LocalTranscriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model == nil {
		return nil
	}
	err := t.model.Close()
	t.model = nil
	return err
}

func (t *LocalTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	pcm, err := audioconv.DecodePCM16k(audio)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnintelligible, err)
	}
	if len(pcm) == 0 {
		return "", domain.ErrUnintelligible
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model == nil {
		return "", errors.New("whisper model closed")
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new whisper context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language %q: %w", t.language, err)
	}
	wctx.SetThreads(t.threads)

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		if s := strings.TrimSpace(segment.Text); s != "" {
			parts = append(parts, s)
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return "", domain.ErrUnintelligible
	}
	return text, nil
}
