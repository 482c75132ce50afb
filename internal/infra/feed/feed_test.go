package feed_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/domain"
	"voice-assistant/internal/infra/feed"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHub_HistoryIsBounded(t *testing.T) {
	hub := feed.NewHub(2, discardLogger())

	hub.Publish(domain.NewMessage(domain.SpeakerBot, "satu"))
	hub.Publish(domain.NewMessage(domain.SpeakerBot, "dua"))
	hub.Publish(domain.NewMessage(domain.SpeakerBot, "tiga"))

	history := hub.History()
	require.Len(t, history, 2)
	assert.Equal(t, "dua", history[0].Text)
	assert.Equal(t, "tiga", history[1].Text)
}

func TestServer_History(t *testing.T) {
	hub := feed.NewHub(10, discardLogger())
	hub.Publish(domain.NewStatus(domain.StatusReady))

	server := httptest.NewServer(feed.NewServer("", hub, discardLogger()).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/history")
	require.NoError(t, err)
	defer resp.Body.Close()

	var events []domain.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	require.Len(t, events, 1)
	assert.Equal(t, domain.StatusReady, events[0].Status)
	assert.Equal(t, "Siap.", events[0].Text)
}

func TestServer_StreamsBacklogThenLiveEvents(t *testing.T) {
	hub := feed.NewHub(10, discardLogger())
	hub.Publish(domain.NewMessage(domain.SpeakerBot, "Halo!"))

	server := httptest.NewServer(feed.NewServer("", hub, discardLogger()).Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first domain.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "Halo!", first.Text)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	hub.Publish(domain.NewMessage(domain.SpeakerUser, "Apa kabar?"))

	var second domain.Event
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, domain.SpeakerUser, second.Speaker)
	assert.Equal(t, "Apa kabar?", second.Text)
}

func TestServer_ClientDisconnectUnsubscribes(t *testing.T) {
	hub := feed.NewHub(10, discardLogger())
	server := httptest.NewServer(feed.NewServer("", hub, discardLogger()).Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StartStop(t *testing.T) {
	hub := feed.NewHub(10, discardLogger())
	srv := feed.NewServer("127.0.0.1:0", hub, discardLogger())

	require.NoError(t, srv.Start())
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/history")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
}
