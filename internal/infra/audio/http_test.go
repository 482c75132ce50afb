package audio_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audio"
)

var wavHeader = []byte("RIFF\x24\x00\x00\x00WAVEfmt audio data")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSource_ReceiveInjectedAudio(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	defer source.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		source.InjectAudio(wavHeader)
	}()

	received, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("receiving audio: %v", err)
	}

	if !bytes.Equal(received, wavHeader) {
		t.Errorf("audio mismatch: got %d bytes, want %d bytes", len(received), len(wavHeader))
	}
}

func TestHTTPSource_AudioEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		wantStatus int
	}{
		{"wav accepted", wavHeader, http.StatusAccepted},
		{"ogg accepted", []byte("OggS\x00\x02rest"), http.StatusAccepted},
		{"unknown format", []byte("not audio at all"), http.StatusUnsupportedMediaType},
		{"empty body", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

			req := httptest.NewRequest(http.MethodPost, "/audio", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			source.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHTTPSource_TextEndpointQueuesMarker(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("  apa kabar  \n"))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if body["text"] != "apa kabar" {
		t.Errorf("reply text: got %v, want %q", body["text"], "apa kabar")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := source.NextCommand(ctx)
	if err != nil {
		t.Fatalf("next command: %v", err)
	}
	if want := domain.TextCommandPrefix + "apa kabar"; string(got) != want {
		t.Errorf("command: got %q, want %q", got, want)
	}
}

func TestHTTPSource_TextEndpointWithToken(t *testing.T) {
	authToken := "test-secret-token-123"

	tests := []struct {
		name       string
		token      string
		inQuery    bool
		wantStatus int
	}{
		{"valid token in header", authToken, false, http.StatusAccepted},
		{"valid token in query", authToken, true, http.StatusAccepted},
		{"invalid token", "wrong-token", false, http.StatusUnauthorized},
		{"missing token", "", false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := audio.NewHTTPSource("127.0.0.1:0", authToken, discardLogger())

			var req *http.Request
			if tt.inQuery {
				req = httptest.NewRequest(http.MethodPost, "/text?token="+tt.token, strings.NewReader("halo"))
			} else {
				req = httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("halo"))
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			source.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHTTPSource_TextEndpointWithoutToken(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("halo"))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status code: got %d, want %d (auth should be disabled)", rec.Code, http.StatusAccepted)
	}
}

func TestHTTPSource_EmptyTextRejected(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("   "))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHTTPSource_QueueFull(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	accepted := 0
	for source.InjectAudio(wavHeader) {
		accepted++
	}
	if accepted == 0 {
		t.Fatal("queue accepted nothing")
	}

	req := httptest.NewRequest(http.MethodPost, "/audio", bytes.NewReader(wavHeader))
	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestHTTPSource_Health(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	rec := httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("before start: got %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	defer source.Stop()

	rec = httptest.NewRecorder()
	source.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("after start: got %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHTTPSource_StopClosesQueue(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	if err := source.Start(context.Background()); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	if err := source.Stop(); err != nil {
		t.Fatalf("stopping source: %v", err)
	}

	_, err := source.NextCommand(context.Background())
	if err != application.ErrSourceClosed {
		t.Errorf("error: got %v, want %v", err, application.ErrSourceClosed)
	}
}

func TestHTTPSource_RateLimited(t *testing.T) {
	source := audio.NewHTTPSource("127.0.0.1:0", "", discardLogger())

	var last int
	for i := 0; i < 31; i++ {
		req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("halo"))
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		source.Handler().ServeHTTP(rec, req)
		last = rec.Code
		if i < 10 {
			// drain so the queue never fills first
			_, _ = source.NextCommand(context.Background())
		}
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("31st request: got %d, want %d", last, http.StatusTooManyRequests)
	}
}
