package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/application"
	"voice-assistant/internal/domain"
)

type mockCommand struct {
	audio []byte
	err   error
}

type mockAudioSource struct {
	mu       sync.Mutex
	commands []mockCommand
	index    int
	started  bool
	stopped  bool
}

func (m *mockAudioSource) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	return nil
}

func (m *mockAudioSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockAudioSource) Name() string { return "mock" }

// NextCommand blocks until ctx ends once all commands are consumed.
func (m *mockAudioSource) NextCommand(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	if m.index < len(m.commands) {
		c := m.commands[m.index]
		m.index++
		m.mu.Unlock()
		return c.audio, c.err
	}
	m.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

type mockSTT struct {
	mu             sync.Mutex
	transcriptions map[string]string
	errs           map[string]error
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	key := string(audio)
	if err, ok := m.errs[key]; ok {
		return "", err
	}
	if text, ok := m.transcriptions[key]; ok {
		return text, nil
	}
	return "perintah tidak dikenal", nil
}

type mockResponder struct {
	answers map[string]string
}

func (m *mockResponder) GetResponse(query string) string {
	if a, ok := m.answers[query]; ok {
		return a
	}
	return "Maaf, saya kurang paham maksud Anda."
}

type mockTTS struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func (m *mockTTS) Speak(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spoken = append(m.spoken, text)
	return m.err
}

func (m *mockTTS) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}

type recordingTranscript struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingTranscript) Publish(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTranscript) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, e := range r.events {
		if e.Kind == domain.EventMessage {
			out = append(out, string(e.Speaker)+": "+e.Text)
		} else {
			out = append(out, "["+e.Text+"]")
		}
	}
	return out
}

func runAssistant(t *testing.T, a *application.Assistant) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAssistant_AnswersSpokenQuestion(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: []mockCommand{{audio: []byte("rekaman-1")}},
	}
	stt := &mockSTT{transcriptions: map[string]string{"rekaman-1": "Apa kabar?"}}
	responder := &mockResponder{answers: map[string]string{"Apa kabar?": "Saya baik, terima kasih"}}
	tts := &mockTTS{}
	transcript := &recordingTranscript{}

	assistant := application.NewAssistant(audioSource, stt, responder, tts, transcript, discardLogger())
	cancel, done := runAssistant(t, assistant)

	require.Eventually(t, func() bool { return len(tts.Spoken()) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return len(transcript.Lines()) == 7 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, []string{"Saya baik, terima kasih"}, tts.Spoken())
	assert.Equal(t, []string{
		"Bot: " + application.Greeting,
		"[Siap.]",
		"[Memproses...]",
		"Anda: Apa kabar?",
		"Bot: Saya baik, terima kasih",
		"[Berbicara...]",
		"[Siap.]",
	}, transcript.Lines())
	assert.True(t, audioSource.started)
	assert.True(t, audioSource.stopped)
}

func TestAssistant_TextCommandSkipsSTT(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: []mockCommand{{audio: []byte(domain.TextCommandPrefix + "siapa nama kamu")}},
	}
	stt := &mockSTT{}
	responder := &mockResponder{answers: map[string]string{"siapa nama kamu": "Saya adalah bot"}}
	tts := &mockTTS{}

	assistant := application.NewAssistant(audioSource, stt, responder, tts, &recordingTranscript{}, discardLogger())
	runAssistant(t, assistant)

	require.Eventually(t, func() bool { return len(tts.Spoken()) == 1 }, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "Saya adalah bot", tts.Spoken()[0])
	assert.Zero(t, stt.calls)
}

func TestAssistant_FailureStatuses(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "api.openai.com", IsTimeout: false}

	audioSource := &mockAudioSource{
		commands: []mockCommand{
			{err: domain.ErrListenTimeout},
			{audio: []byte("gumam")},
			{audio: []byte("offline")},
			{audio: []byte("kosong")},
			{audio: []byte(domain.TextCommandPrefix + "halo")},
		},
	}
	stt := &mockSTT{
		transcriptions: map[string]string{"kosong": "   "},
		errs: map[string]error{
			"gumam":   domain.ErrUnintelligible,
			"offline": dnsErr,
		},
	}
	tts := &mockTTS{}
	transcript := &recordingTranscript{}

	assistant := application.NewAssistant(audioSource, stt, &mockResponder{}, tts, transcript, discardLogger())
	runAssistant(t, assistant)

	require.Eventually(t, func() bool { return len(tts.Spoken()) == 1 }, 2*time.Second, 10*time.Millisecond)

	lines := transcript.Lines()
	assert.Contains(t, lines, "[Waktu habis. Coba lagi.]")
	assert.Contains(t, lines, "[Error koneksi internet.]")

	unclear := 0
	for _, l := range lines {
		if l == "[Suara tidak jelas.]" {
			unclear++
		}
	}
	assert.Equal(t, 2, unclear)
	assert.Contains(t, lines, "Anda: halo")
}

func TestAssistant_SpeakErrorIsNotFatal(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: []mockCommand{
			{audio: []byte(domain.TextCommandPrefix + "satu")},
			{audio: []byte(domain.TextCommandPrefix + "dua")},
		},
	}
	tts := &mockTTS{err: errors.New("espeak-ng: not found")}

	assistant := application.NewAssistant(audioSource, &mockSTT{}, &mockResponder{}, tts, &recordingTranscript{}, discardLogger())
	runAssistant(t, assistant)

	require.Eventually(t, func() bool { return len(tts.Spoken()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestAssistant_StopsWhenSourceCloses(t *testing.T) {
	audioSource := &mockAudioSource{
		commands: []mockCommand{{err: application.ErrSourceClosed}},
	}

	assistant := application.NewAssistant(audioSource, &mockSTT{}, &mockResponder{}, &mockTTS{}, &recordingTranscript{}, discardLogger())
	_, done := runAssistant(t, assistant)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, application.ErrSourceClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("assistant did not stop after source closed")
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.Status
		ok   bool
	}{
		{"timeout", domain.ErrListenTimeout, domain.StatusTimeout, true},
		{"wrapped unclear", errors.Join(errors.New("whisper"), domain.ErrUnintelligible), domain.StatusUnclear, true},
		{"connection", domain.ErrConnection, domain.StatusNetworkDown, true},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, domain.StatusNetworkDown, true},
		{"other", errors.New("boom"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := application.StatusForError(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
