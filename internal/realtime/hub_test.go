package realtime_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, cfg realtime.Config) (*realtime.Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()

	hub := realtime.NewHub(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = hub.Run(ctx)
		close(stopped)
	}()

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		<-stopped
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server, hub *realtime.Hub, want int) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == want },
		2*time.Second, 10*time.Millisecond)
	return conn
}

func envelope(t *testing.T, e events.Event) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(e)
	require.NoError(t, err)
	return env
}

func readEnvelope(t *testing.T, conn *websocket.Conn) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestHubFansOutToAllClients(t *testing.T) {
	hub, srv, _ := startHub(t, realtime.Config{ClientBuffer: 4, AllowedOrigins: []string{"*"}})

	first := dial(t, srv, hub, 1)
	second := dial(t, srv, hub, 2)

	require.NoError(t, hub.Deliver(context.Background(), envelope(t, events.TaskDeleted{ID: "42"})))

	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "taskDeleted", env.Event)
		assert.JSONEq(t, `"42"`, string(env.Data))
	}
}

func TestHubLateClientMissesEarlierEvents(t *testing.T) {
	hub, srv, _ := startHub(t, realtime.Config{})

	early := dial(t, srv, hub, 1)
	require.NoError(t, hub.Deliver(context.Background(), envelope(t, events.TaskDeleted{ID: "before"})))
	assert.JSONEq(t, `"before"`, string(readEnvelope(t, early).Data))

	late := dial(t, srv, hub, 2)
	require.NoError(t, hub.Deliver(context.Background(), envelope(t, events.TaskDeleted{ID: "after"})))

	assert.JSONEq(t, `"after"`, string(readEnvelope(t, late).Data))
	assert.JSONEq(t, `"after"`, string(readEnvelope(t, early).Data))
}

func TestHubPreservesOrder(t *testing.T) {
	hub, srv, _ := startHub(t, realtime.Config{ClientBuffer: 32})
	conn := dial(t, srv, hub, 1)

	ids := []string{"1", "2", "3", "4", "5"}
	for _, id := range ids {
		require.NoError(t, hub.Deliver(context.Background(), envelope(t, events.TaskDeleted{ID: id})))
	}
	for _, id := range ids {
		assert.JSONEq(t, `"`+id+`"`, string(readEnvelope(t, conn).Data))
	}
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, srv, _ := startHub(t, realtime.Config{})
	conn := dial(t, srv, hub, 1)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, srv, cancel := startHub(t, realtime.Config{})
	conn := dial(t, srv, hub, 1)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return hub.Deliver(context.Background(), envelope(t, events.TaskDeleted{ID: "x"})) != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsPlainHTTP(t *testing.T) {
	_, srv, _ := startHub(t, realtime.Config{})

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestHubChecksOrigin(t *testing.T) {
	_, srv, _ := startHub(t, realtime.Config{AllowedOrigins: []string{"https://app.example.com"}})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://app.example.com"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = conn.Close()
}
