package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Event is the envelope for every server -> client push.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Conn wraps a websocket connection with a write mutex so the registry and
// the relay can push to it from different goroutines. A write that misses the
// deadline fails the connection rather than blocking the sender.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Send pushes one event to the client. Best effort: an error means the
// connection is no longer usable and the caller should drop it.
func (c *Conn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(ev)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
