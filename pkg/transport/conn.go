package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parlorgames/parlor/pkg/protocol"
)

const (
	writeWait = 10 * time.Second
	sendQueue = 256
)

// Conn is one WebSocket connection. Writes go through a buffered send
// channel drained by a dedicated write pump; a full queue or a closed
// connection drops the packet silently.
type Conn struct {
	ws         *websocket.Conn
	send       chan []byte
	done       chan struct{}
	remoteAddr string

	mu            sync.Mutex
	username      string
	authenticated bool
	closed        bool
}

// RemoteAddr returns the peer address string.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Authenticated reports whether the connection has logged in.
func (c *Conn) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Username returns the username bound to this connection, or "".
func (c *Conn) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

// BindUser marks the connection authenticated as username.
func (c *Conn) BindUser(username string) {
	c.mu.Lock()
	c.username = username
	c.authenticated = true
	c.mu.Unlock()
}

// Send marshals pkt and queues it for delivery. Dead or backed-up
// connections drop the write.
func (c *Conn) Send(pkt protocol.Packet) {
	data, err := json.Marshal(pkt)
	if err != nil {
		return
	}
	c.sendRaw(data)
}

// sendRaw queues data unless the connection is closed or backed up.
// The send channel itself is never closed, so a Close racing a
// concurrent send cannot panic; writePump stops via done instead.
func (c *Conn) sendRaw(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)
	_ = c.ws.Close()
}

func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.ws.Close()
				return
			}
		}
	}
}
