package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

// MessageType is the type of a feed message.
type MessageType string

const (
	MessageHello    MessageType = "hello"
	MessageSnapshot MessageType = "snapshot"
)

// Message is sent to feed clients as JSON.
type Message struct {
	Type     MessageType `json:"type"`
	Client   string      `json:"client,omitempty"`
	Snapshot *Snapshot   `json:"snapshot,omitempty"`
}

// sendBuffer is the number of messages queued per client before the client
// is considered too slow and dropped.
const sendBuffer = 16

type client struct {
	id   ulid.ULID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Feed pushes snapshots to websocket clients.
type Feed struct {
	clients  map[ulid.ULID]*client
	last     []byte
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewFeed creates an empty feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		clients: make(map[ulid.ULID]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // The inspector is read-only
			},
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection, greets the client with its ID,
// sends the latest snapshot and then every published one.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		id:   ulid.Make(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	hello, _ := json.Marshal(Message{Type: MessageHello, Client: c.id.String()})
	c.send <- hello

	f.mu.Lock()
	if f.last != nil {
		c.send <- f.last
	}
	f.clients[c.id] = c
	f.mu.Unlock()

	f.logger.Debug("inspector client connected", "client", c.id.String())

	go f.writePump(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.remove(c)
	f.logger.Debug("inspector client disconnected", "client", c.id.String())
}

func (f *Feed) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			f.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	if f.clients[c.id] == c {
		delete(f.clients, c.id)
	}
	f.mu.Unlock()
	c.close()
}

// Publish sends snap to every client. Clients whose queue is full are
// dropped.
func (f *Feed) Publish(snap Snapshot) {
	data, err := json.Marshal(Message{Type: MessageSnapshot, Snapshot: &snap})
	if err != nil {
		f.logger.Warn("inspector snapshot encoding failed", "error", err)
		return
	}

	f.mu.Lock()
	f.last = data
	var slow []*client
	for _, c := range f.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(f.clients, c.id)
	}
	f.mu.Unlock()

	for _, c := range slow {
		f.logger.Warn("inspector client too slow, dropping", "client", c.id.String())
		c.close()
	}
}

// ClientCount returns the number of connected clients.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Close disconnects every client.
func (f *Feed) Close() {
	f.mu.Lock()
	clients := make([]*client, 0, len(f.clients))
	for id, c := range f.clients {
		clients = append(clients, c)
		delete(f.clients, id)
	}
	f.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
