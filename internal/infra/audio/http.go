package audio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/audioconv"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
	queueSize     = 10
)

// HTTPSource accepts recordings on POST /audio and typed questions on
// POST /text. Payloads wait in a bounded queue; a full queue answers 503.
type HTTPSource struct {
	addr      string
	authToken string
	logger    *slog.Logger
	limiter   *RateLimiter
	mux       *http.ServeMux

	queue     chan []byte
	closeOnce sync.Once

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:      addr,
		authToken: authToken,
		logger:    logger,
		limiter:   NewRateLimiter(30, time.Minute),
		mux:       http.NewServeMux(),
		queue:     make(chan []byte, queueSize),
	}
	h.mux.HandleFunc("POST /audio", h.limiter.Middleware(h.authorize(h.handleAudio)))
	h.mux.HandleFunc("POST /text", h.limiter.Middleware(h.authorize(h.handleText)))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Handler() http.Handler {
	return h.mux
}

// Addr returns the bound address once started, the configured one before.
func (h *HTTPSource) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.addr
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", h.addr, err)
	}

	h.listener = ln
	h.server = &http.Server{
		Handler:      h.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func(srv *http.Server) {
		h.logger.Info("HTTP audio server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", "error", err)
		}
	}(h.server)

	return nil
}

// Stop shuts the server down and closes the queue, so NextCommand reports
// application.ErrSourceClosed.
func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	srv := h.server
	h.server = nil
	h.listener = nil
	h.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	h.closeOnce.Do(func() {
		close(h.queue)
	})
	return nil
}

func (h *HTTPSource) NextCommand(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload, ok := <-h.queue:
		if !ok {
			return nil, application.ErrSourceClosed
		}
		return payload, nil
	}
}

// InjectAudio queues a payload as if it had been posted. It reports false
// when the queue is full.
func (h *HTTPSource) InjectAudio(data []byte) bool {
	return h.enqueue(data)
}

func (h *HTTPSource) enqueue(payload []byte) bool {
	select {
	case h.queue <- payload:
		return true
	default:
		return false
	}
}

func (h *HTTPSource) running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.server != nil
}

// authorize checks the auth token, when one is configured, from the
// X-Auth-Token header or the token query parameter.
func (h *HTTPSource) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.authToken == "" {
			next(w, r)
			return
		}

		token := r.Header.Get("X-Auth-Token")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token != h.authToken {
			h.logger.Warn("unauthorized request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (h *HTTPSource) handleAudio(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty audio", http.StatusBadRequest)
		return
	}

	format := audioconv.Sniff(data)
	if format == audioconv.FormatUnknown {
		http.Error(w, "unsupported audio format", http.StatusUnsupportedMediaType)
		return
	}

	if !h.enqueue(data) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received audio via HTTP", "bytes", len(data), "format", format)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "bytes": len(data), "format": format})
}

func (h *HTTPSource) handleText(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTextBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		http.Error(w, "empty text", http.StatusBadRequest)
		return
	}

	if !h.enqueue([]byte(domain.TextCommandPrefix + text)) {
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("received text command via HTTP", "text", text)
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "text": text})
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, _ *http.Request) {
	running := h.running()

	status, code := "ok", http.StatusOK
	if !running {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{"status": status, "running": running, "queue_size": len(h.queue)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
