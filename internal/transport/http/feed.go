package http

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cimillas/ticketpool/internal/pool"
	"github.com/gorilla/websocket"
)

const (
	feedWriteWait    = 10 * time.Second
	feedPongWait     = 60 * time.Second
	feedPingInterval = 30 * time.Second
	feedBuffer       = 256
)

// FeedHub streams pool events to websocket clients. It is a pool.Observer:
// Observe never blocks, and a client that falls behind loses events rather
// than slowing the pool down.
type FeedHub struct {
	upgrader   websocket.Upgrader
	logger     *log.Logger
	maxClients int

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	closed  bool
	done    chan struct{}
}

type feedClient struct {
	send    chan []byte
	dropped atomic.Int64
}

// NewFeedHub accepts connections whose Origin is empty or on allowedOrigins.
func NewFeedHub(logger *log.Logger, allowedOrigins []string, maxClients int) *FeedHub {
	if logger == nil {
		logger = log.Default()
	}
	policy := newOriginPolicy(allowedOrigins)
	return &FeedHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || policy.allows(origin)
			},
		},
		logger:     logger,
		maxClients: maxClients,
		clients:    make(map[*feedClient]struct{}),
		done:       make(chan struct{}),
	}
}

type feedMessage struct {
	Kind    string          `json:"kind"`
	PoolID  string          `json:"pool_id"`
	ActorID string          `json:"actor_id,omitempty"`
	Ticket  *ticketResponse `json:"ticket,omitempty"`
	Stats   pool.Stats      `json:"stats"`
	At      time.Time       `json:"at"`
}

func (h *FeedHub) Observe(e pool.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg := feedMessage{
		Kind:    string(e.Kind),
		PoolID:  e.PoolID,
		ActorID: e.ActorID,
		Stats:   e.Stats,
		At:      e.At,
	}
	if e.Ticket != nil {
		t := newTicketResponse(*e.Ticket)
		msg.Ticket = &t
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Printf("WARN: feed marshal kind=%s err=%v", e.Kind, err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			c.dropped.Add(1)
		}
	}
}

// Clients reports the number of connected feed clients.
func (h *FeedHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *FeedHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

func (h *FeedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	c := &feedClient{send: make(chan []byte, feedBuffer)}
	h.mu.Lock()
	switch {
	case h.closed:
		h.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, codeTooManyClients, "feed closed")
		return
	case h.maxClients > 0 && len(h.clients) >= h.maxClients:
		h.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, codeTooManyClients, "maximum feed clients reached")
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		if dropped := c.dropped.Load(); dropped > 0 {
			h.logger.Printf("WARN: feed client dropped events=%d remote=%s", dropped, r.RemoteAddr)
		}
	}()

	// Upgrade writes its own HTTP error on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("WARN: feed upgrade remote=%s err=%v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	// Reads only detect the peer going away; clients send nothing.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Printf("WARN: feed read remote=%s err=%v", r.RemoteAddr, err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(feedWriteWait))
			return
		}
	}
}
