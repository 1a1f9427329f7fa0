package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event types pushed to connected back-office clients.
const (
	RequestCreatedType = "REQUEST_CREATED"
	StatusChangedType  = "STATUS_CHANGED"
)

const (
	// writeWait bounds a single frame write so a dead peer cannot pin the
	// writer goroutine forever.
	writeWait = 10 * time.Second
	// sendBuffer is the per-client queue; a client that falls this far
	// behind is dropped.
	sendBuffer = 16
)

// Message is the wire format for live feed events.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client owns one connection. All frames go through send; writePump is the
// only goroutine allowed to call WriteMessage on the conn. done is closed by
// the manager loop exactly once, when the client is dropped.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// writePump drains the send queue. gorilla/websocket permits at most one
// concurrent writer per connection, so every write is funneled here. On a
// write error the connection is closed, which wakes the read loop and lets
// it unregister the client.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// queue enqueues a frame without blocking. It reports false when the
// client's buffer is full.
func (c *client) queue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Manager keeps track of every open back-office connection and fans events
// out to all of them. The clients map is owned by the Start loop; handlers
// talk to it only through channels.
type Manager struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan *Message
}

// NewManager creates an empty connection manager. Call Start before serving
// connections.
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Message, 64),
	}
}

// Start runs the register/unregister/broadcast loop in its own goroutine.
func (m *Manager) Start() {
	go m.loop()
}

func (m *Manager) loop() {
	for {
		select {
		case c := <-m.register:
			m.clients[c] = true

		case c := <-m.unregister:
			m.drop(c)

		case msg := <-m.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("ws: failed to encode message: %v", err)
				continue
			}
			for c := range m.clients {
				if !c.queue(data) {
					// A full queue means the client stopped
					// reading; dropping it keeps the feed moving.
					m.drop(c)
				}
			}
		}
	}
}

// drop removes a client, stops its writePump and closes the connection so a
// blocked read loop wakes up. Only the loop goroutine calls this.
func (m *Manager) drop(c *client) {
	if _, ok := m.clients[c]; ok {
		delete(m.clients, c)
		close(c.done)
		c.conn.Close()
	}
}

// Broadcast queues a message for delivery to every connected client. The
// message is dropped when the queue is full or the loop is not running; the
// feed is advisory, never load-bearing.
func (m *Manager) Broadcast(msg *Message) {
	select {
	case m.broadcast <- msg:
	default:
	}
}

// Handler upgrades the HTTP connection and registers it with the manager.
// It sits behind the admin auth middleware, so anyone reaching it is
// already authenticated.
func (m *Manager) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != "websocket" {
			c.String(http.StatusBadRequest, "websocket connection required")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("ws: upgrade failed: %v", err)
			return
		}

		cl := &client{
			conn: conn,
			send: make(chan []byte, sendBuffer),
			done: make(chan struct{}),
		}
		m.register <- cl
		go cl.writePump()
		go m.readLoop(cl)
	}
}

// readLoop drains incoming messages and answers pings through the send
// queue. The feed is one-directional otherwise.
func (m *Manager) readLoop(cl *client) {
	defer func() {
		m.unregister <- cl
	}()

	for {
		_, message, err := cl.conn.ReadMessage()
		if err != nil {
			break
		}

		var data map[string]interface{}
		if err := json.Unmarshal(message, &data); err != nil {
			continue
		}

		if msgType, ok := data["type"].(string); ok && msgType == "ping" {
			pong, _ := json.Marshal(map[string]interface{}{
				"type": "pong",
				"time": time.Now().Unix(),
			})
			cl.queue(pong)
		}
	}
}

// SendRequestCreated announces a freshly submitted request to the feed.
func (m *Manager) SendRequestCreated(requestID uint, requestType string) {
	m.Broadcast(&Message{
		Type: RequestCreatedType,
		Payload: map[string]interface{}{
			"request_id":   requestID,
			"request_type": requestType,
		},
	})
}

// SendStatusChanged announces a status transition to the feed.
func (m *Manager) SendStatusChanged(requestID uint, status string) {
	m.Broadcast(&Message{
		Type: StatusChangedType,
		Payload: map[string]interface{}{
			"request_id": requestID,
			"status":     status,
		},
	})
}
