package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeedServer(t *testing.T) (*Manager, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := NewManager()
	m.Start()
	r := gin.New()
	r.GET("/ws", m.Handler())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return m, srv
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// awaitPong proves the client is fully registered: the pong travels through
// the same send queue as broadcasts, so once it arrives, later broadcasts
// will be delivered too.
func awaitPong(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "pong", msg["type"])
}

func readEvent(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	m, srv := newFeedServer(t)
	a := dialFeed(t, srv)
	b := dialFeed(t, srv)
	awaitPong(t, a)
	awaitPong(t, b)

	m.SendRequestCreated(42, "quote")

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readEvent(t, conn)
		assert.Equal(t, RequestCreatedType, msg.Type)
		payload := msg.Payload.(map[string]interface{})
		assert.Equal(t, float64(42), payload["request_id"])
		assert.Equal(t, "quote", payload["request_type"])
	}
}

// Pongs and broadcasts write the same connection from different goroutines.
// Funneling them through the per-client writer must keep every frame intact;
// unserialized writes would panic inside gorilla/websocket.
func TestConcurrentPingsAndBroadcasts(t *testing.T) {
	m, srv := newFeedServer(t)
	conn := dialFeed(t, srv)
	awaitPong(t, conn)

	const rounds = 50

	go func() {
		for i := 0; i < rounds; i++ {
			m.SendStatusChanged(uint(i), "processing")
		}
	}()
	go func() {
		for i := 0; i < rounds; i++ {
			conn.WriteJSON(map[string]string{"type": "ping"})
		}
	}()

	pongs, events := 0, 0
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for pongs+events < 2*rounds {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		switch {
		case strings.Contains(string(data), "pong"):
			pongs++
		case strings.Contains(string(data), StatusChangedType):
			events++
		default:
			t.Fatalf("unexpected frame %s", data)
		}
	}
	assert.Equal(t, rounds, pongs)
	assert.Equal(t, rounds, events)
}

// A client that stopped reading must not stall delivery to the others.
func TestSlowClientDoesNotBlockOthers(t *testing.T) {
	m, srv := newFeedServer(t)
	slow := dialFeed(t, srv)
	healthy := dialFeed(t, srv)
	awaitPong(t, slow)
	awaitPong(t, healthy)

	// slow never reads again; healthy must still see every event.
	const rounds = 100
	received := 0
	for i := 0; i < rounds; i++ {
		m.SendStatusChanged(uint(i), "completed")
		msg := readEvent(t, healthy)
		require.Equal(t, StatusChangedType, msg.Type, "event %d", i)
		received++
	}
	assert.Equal(t, rounds, received)
}

func TestHandlerRejectsPlainHTTP(t *testing.T) {
	_, srv := newFeedServer(t)

	resp, err := srv.Client().Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestBroadcastWithoutLoopDoesNotBlock(t *testing.T) {
	m := NewManager() // never started

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			m.SendRequestCreated(uint(i), "quote")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked with no loop running")
	}
}
