package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/communitysync/internal/models"
)

// wsServer тестовый push-сервер на gorilla upgrader
type wsServer struct {
	server      *httptest.Server
	onConn      func(n int32, conn *websocket.Conn)
	closeCodes  chan int
	auth        atomic.Value
	connections atomic.Int32
}

func newWSServer(t *testing.T, onConn func(n int32, conn *websocket.Conn)) *wsServer {
	t.Helper()
	s := &wsServer{onConn: onConn, closeCodes: make(chan int, 4)}
	upgrader := websocket.Upgrader{}

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.auth.Store(r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		n := s.connections.Add(1)
		s.onConn(n, conn)

		// ждем закрытия со стороны клиента
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if ce, ok := err.(*websocket.CloseError); ok {
					s.closeCodes <- ce.Code
				}
				return
			}
		}
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *wsServer) url() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func collectStates(m *Manager) chan models.ConnectionState {
	states := make(chan models.ConnectionState, 32)
	m.OnStateChange(func(s models.ConnectionState) { states <- s })
	return states
}

func waitFor(t *testing.T, states chan models.ConnectionState, want models.ConnectionState) {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case got := <-states:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timeout waiting for state %s", want)
		}
	}
}

func TestManager_WebsocketRoundTrip(t *testing.T) {
	srv := newWSServer(t, func(n int32, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"collection":"posts","type":"create","data":{"id":"p1"}}`))
	})

	m := NewManager(Config{Token: "tok"}, testLogger)
	states := collectStates(m)
	messages := make(chan []byte, 4)
	m.OnMessage(func(b []byte) { messages <- b })

	require.NoError(t, m.Open(srv.url()))
	waitFor(t, states, models.StateOpen)

	select {
	case msg := <-messages:
		assert.Contains(t, string(msg), `"collection":"posts"`)
	case <-time.After(waitTimeout):
		t.Fatal("frame not received")
	}
	assert.Equal(t, "Bearer tok", srv.auth.Load())

	m.Close()
	waitFor(t, states, models.StateClosed)

	select {
	case code := <-srv.closeCodes:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(waitTimeout):
		t.Fatal("server did not receive close frame")
	}
}

func TestManager_WebsocketReconnectAfterGoingAway(t *testing.T) {
	srv := newWSServer(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "restart")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
	})

	m := NewManager(Config{ReconnectDelay: 20 * time.Millisecond}, testLogger)
	states := collectStates(m)

	require.NoError(t, m.Open(srv.url()))
	waitFor(t, states, models.StateOpen)
	waitFor(t, states, models.StateReconnecting)
	waitFor(t, states, models.StateOpen)

	assert.Equal(t, int32(2), srv.connections.Load())
	m.Close()
	waitFor(t, states, models.StateClosed)
}

func TestManager_WebsocketServerNormalCloseReconnects(t *testing.T) {
	srv := newWSServer(t, func(n int32, conn *websocket.Conn) {
		// сервер завершает первое соединение штатно, как при перезапуске
		if n == 1 {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
	})

	m := NewManager(Config{ReconnectDelay: 10 * time.Millisecond}, testLogger)
	states := collectStates(m)

	require.NoError(t, m.Open(srv.url()))
	waitFor(t, states, models.StateOpen)
	waitFor(t, states, models.StateReconnecting)
	waitFor(t, states, models.StateOpen)

	assert.Equal(t, int32(2), srv.connections.Load())
	assert.Equal(t, models.StateOpen, m.State())

	m.Close()
	waitFor(t, states, models.StateClosed)
}
