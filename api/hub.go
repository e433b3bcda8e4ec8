package api

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// socket is the subset of *websocket.Conn the hub needs.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Conn is one live observer of the event feed. It has no identity beyond
// registry membership; the feed is public once the handshake completes.
type Conn struct {
	id   string
	sock socket

	mu sync.Mutex // serializes writers on the one socket
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
	return c.sock.WriteMessage(websocket.TextMessage, data)
}

// Hub tracks the live connection set and fans events out to all of it.
type Hub struct {
	logger *log.Logger

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{logger: logger, conns: make(map[*Conn]struct{})}
}

// Add registers a connection whose transport handshake has completed.
func (h *Hub) Add(sock socket) *Conn {
	c := &Conn{id: uuid.NewString(), sock: sock}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	h.logger.WithField("conn", c.id).Debug("connection added")
	return c
}

// Remove drops a connection from the live set. Safe to call more than once.
func (h *Hub) Remove(c *Conn) {
	h.mu.Lock()
	_, live := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if live {
		h.logger.WithField("conn", c.id).Debug("connection removed")
	}
}

// Len reports the current live set size.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

type eventEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Broadcast serializes {event, payload} once and delivers it to every
// connection in the current live set. Each send runs on its own goroutine so
// one slow peer cannot stall the rest. Connections that fail their send are
// removed only after the whole sweep settles; the caller never sees an
// error. Connections added mid-sweep miss the in-flight event.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := sonic.ConfigStd.Marshal(eventEnvelope{Event: event, Payload: payload})
	if err != nil {
		h.logger.Errorf("broadcast %s: marshal: %v", event, err)
		return
	}

	h.mu.Lock()
	snapshot := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	failed := make(chan *Conn, len(snapshot))
	var wg sync.WaitGroup
	for _, c := range snapshot {
		wg.Add(1)
		go func(c *Conn) {
			defer wg.Done()
			if err := c.write(data); err != nil {
				h.logger.WithField("conn", c.id).Debugf("broadcast %s: send failed: %v", event, err)
				failed <- c
			}
		}(c)
	}
	wg.Wait()
	close(failed)

	for c := range failed {
		h.Remove(c)
		_ = c.sock.Close()
	}
}
