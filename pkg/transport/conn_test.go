package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlorgames/parlor/pkg/protocol"
)

// wsPair upgrades one server-side connection per dial and hands the
// wrapped Conn back alongside the client socket.
type wsPair struct {
	srv   *httptest.Server
	ready chan *websocket.Conn
}

func newWSPair(t *testing.T) *wsPair {
	t.Helper()
	p := &wsPair{ready: make(chan *websocket.Conn, 1)}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		p.ready <- ws
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *wsPair) dial(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(p.srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ws := <-p.ready
	c := &Conn{
		ws:         ws,
		send:       make(chan []byte, sendQueue),
		done:       make(chan struct{}),
		remoteAddr: ws.RemoteAddr().String(),
	}
	go c.writePump()
	t.Cleanup(c.Close)
	return c, client
}

func TestSendDeliversToPeer(t *testing.T) {
	c, client := newWSPair(t).dial(t)

	c.Send(protocol.NewPong())
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "pong")
}

func TestBindUser(t *testing.T) {
	c, _ := newWSPair(t).dial(t)

	assert.False(t, c.Authenticated())
	assert.Empty(t, c.Username())
	c.BindUser("alice")
	assert.True(t, c.Authenticated())
	assert.Equal(t, "alice", c.Username())
}

func TestCloseIsIdempotent(t *testing.T) {
	c, _ := newWSPair(t).dial(t)
	c.Close()
	c.Close()
	c.sendRaw([]byte(`{"type":"ping"}`)) // no-op after close
}

// Sends racing a close must never panic: the send channel stays open
// and the write pump stops through the done channel.
func TestConcurrentSendAndClose(t *testing.T) {
	pair := newWSPair(t)
	for i := 0; i < 25; i++ {
		c, _ := pair.dial(t)

		var wg sync.WaitGroup
		start := make(chan struct{})
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 500; j++ {
					c.sendRaw([]byte(`{"type":"ping"}`))
				}
			}()
		}
		close(start)
		c.Close()
		wg.Wait()
	}
}
