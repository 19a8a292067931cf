package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"socialnet/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 12
	maxTotalConns   = 10000
)

var (
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrHubClosed       = errors.New("hub is shut down")
)

// Hub maps user IDs to their open WebSocket clients.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a connection for userID, enforcing per-user and global limits.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	clients, ok := h.conns[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.conns[userID] = clients
	}
	if len(clients) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	c := newClient(h, conn, userID)
	clients[c] = struct{}{}
	h.total++
	middleware.ActiveWebSockets.Inc()
	return c, nil
}

// Unregister removes c and closes its outbound queue. Repeated calls are ignored.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(c)
}

func (h *Hub) remove(c *Client) {
	clients, ok := h.conns[c.UserID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.conns, c.UserID)
	}
	h.total--
	middleware.ActiveWebSockets.Dec()
	c.closeSend()
}

// Deliver queues payload on every connection of userID.
func (h *Hub) Deliver(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.TrySend(payload)
	}
}

// Connections returns the number of open connections of userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring forwards every event published through n to the matching users.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, h.Deliver)
}

// Shutdown closes every connection with a going-away frame.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for userID, clients := range h.conns {
		for c := range clients {
			if c.Conn != nil {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
				if err := c.Conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
					middleware.Logger.Debug("close frame failed", slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
				}
				_ = c.Conn.Close()
			}
			h.remove(c)
		}
	}
	return nil
}
