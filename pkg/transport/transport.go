// Package transport accepts WebSocket connections, decodes inbound
// JSON packets and hands them to the owner through a single channel.
// It never interprets packet types; malformed frames are dropped.
package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"

	"github.com/parlorgames/parlor/pkg/protocol"
)

// EventKind distinguishes the three things a connection can produce.
type EventKind int

const (
	// EventPacket carries one decoded inbound packet.
	EventPacket EventKind = iota
	// EventDisconnect signals the connection closed.
	EventDisconnect
)

// Event is one item on the inbound channel.
type Event struct {
	Kind   EventKind
	Conn   *Conn
	Packet protocol.Inbound
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Listener accepts WebSocket connections on a plain or TLS socket.
type Listener struct {
	log     slog.Logger
	inbound chan Event

	mu    sync.RWMutex
	conns map[*Conn]struct{}

	srv *http.Server
}

// NewListener creates an idle listener. Events appear on Inbound()
// once Start is called.
func NewListener(log slog.Logger) *Listener {
	return &Listener{
		log:     log,
		inbound: make(chan Event, 1024),
		conns:   make(map[*Conn]struct{}),
	}
}

// Inbound returns the channel of connection events. All packets from
// all connections are serialized through it so the owner can process
// them on a single goroutine.
func (l *Listener) Inbound() <-chan Event {
	return l.inbound
}

// Start begins accepting on host:port. If certFile and keyFile are
// both set the listener serves TLS. It returns once the socket is
// bound; accept loops run in the background.
func (l *Listener) Start(host string, port int, certFile, keyFile string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.serveWS)

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	l.srv = &http.Server{
		Addr:        addr,
		Handler:     mux,
		IdleTimeout: 10 * time.Minute,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	scheme := "ws"
	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			ln.Close()
			return fmt.Errorf("load TLS keypair: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{Certificates: []tls.Certificate{cert}})
		scheme = "wss"
	}

	l.log.Infof("Listening on %s://%s/", scheme, addr)
	go func() {
		if err := l.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			l.log.Errorf("Serve: %v", err)
		}
	}()
	return nil
}

// Stop closes the listener and every open connection.
func (l *Listener) Stop() {
	if l.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.srv.Shutdown(ctx)
	}

	l.mu.Lock()
	conns := make([]*Conn, 0, len(l.conns))
	for c := range l.conns {
		conns = append(conns, c)
	}
	l.conns = make(map[*Conn]struct{})
	l.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// Broadcast delivers pkt to every authenticated connection except
// exclude (which may be nil).
func (l *Listener) Broadcast(pkt protocol.Packet, exclude *Conn) {
	data, err := json.Marshal(pkt)
	if err != nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	for c := range l.conns {
		if c == exclude || !c.Authenticated() {
			continue
		}
		c.sendRaw(data)
	}
}

// SendToUser delivers pkt to the connection bound to username.
// Returns false when no such connection exists.
func (l *Listener) SendToUser(username string, pkt protocol.Packet) bool {
	l.mu.RLock()
	var target *Conn
	for c := range l.conns {
		if c.Authenticated() && c.Username() == username {
			target = c
			break
		}
	}
	l.mu.RUnlock()
	if target == nil {
		return false
	}
	target.Send(pkt)
	return true
}

func (l *Listener) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.Debugf("upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}

	conn := &Conn{
		ws:         ws,
		send:       make(chan []byte, sendQueue),
		done:       make(chan struct{}),
		remoteAddr: r.RemoteAddr,
	}

	l.mu.Lock()
	l.conns[conn] = struct{}{}
	l.mu.Unlock()

	l.log.Debugf("connection from %s", conn.remoteAddr)

	go conn.writePump()
	go l.readPump(conn)
}

func (l *Listener) readPump(c *Conn) {
	defer func() {
		l.mu.Lock()
		delete(l.conns, c)
		l.mu.Unlock()
		c.Close()
		l.inbound <- Event{Kind: EventDisconnect, Conn: c}
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var pkt protocol.Inbound
		if err := json.Unmarshal(data, &pkt); err != nil {
			// Protocol noise; never disconnects the client.
			continue
		}
		if pkt.Type == "" {
			continue
		}
		l.inbound <- Event{Kind: EventPacket, Conn: c, Packet: pkt}
	}
}
