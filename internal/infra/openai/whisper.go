// Package openai transcribes speech with the OpenAI audio API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra"
	"voice-assistant/internal/infra/audioconv"
)

const DefaultModel = "whisper-1"

type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string

	// HTTPClient replaces the SDK's default client, e.g. one dialing
	// through a SOCKS proxy.
	HTTPClient *http.Client
	Retry      infra.RetryConfig
}

type WhisperClient struct {
	client   openai.Client
	model    string
	language string
	retry    infra.RetryConfig
}

func NewWhisperClient(cfg WhisperConfig) *WhisperClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = infra.DefaultRetryConfig()
	}

	return &WhisperClient{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
		retry:    retry,
	}
}

var contentTypes = map[audioconv.Format]string{
	audioconv.FormatWAV:  "audio/wav",
	audioconv.FormatMP3:  "audio/mpeg",
	audioconv.FormatOgg:  "audio/ogg",
	audioconv.FormatWebM: "audio/webm",
	audioconv.FormatM4A:  "audio/mp4",
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	format := audioconv.Sniff(audio)
	contentType, ok := contentTypes[format]
	if !ok {
		contentType = "application/octet-stream"
	}

	var text string

	err := infra.WithRetry(ctx, c.retry, func() error {
		params := openai.AudioTranscriptionNewParams{
			File:  openai.File(bytes.NewReader(audio), format.Filename(), contentType),
			Model: openai.AudioModel(c.model),
		}
		if c.language != "" {
			params.Language = openai.String(c.language)
		}

		resp, err := c.client.Audio.Transcriptions.New(ctx, params)
		if err != nil {
			return classify(err)
		}

		text = resp.Text
		return nil
	})
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("whisper request: %w: %w", domain.ErrConnection, err)
		}
		return "", fmt.Errorf("whisper request: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrUnintelligible
	}
	return text, nil
}

// classify marks API errors that another attempt cannot fix as permanent.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if infra.IsRetryableHTTPStatus(apiErr.StatusCode) {
			return fmt.Errorf("whisper API error %d (retryable): %w", apiErr.StatusCode, err)
		}
		return infra.Permanent(fmt.Errorf("whisper API error %d: %w", apiErr.StatusCode, err))
	}
	return err
}

// isConnectionError reports network failures. The caller's own deadline or
// cancellation also satisfies net.Error and is excluded.
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
