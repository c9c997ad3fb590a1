package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
)

const (
	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// Hub fans session events out to websocket subscribers. Each subscriber only receives events
// for sessions it could list: its own, or all of them for admins.
type Hub struct {
	mu           sync.RWMutex
	clients      map[*client]struct{}
	pingInterval time.Duration
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewHub builds hub. Non-positive pingInterval falls back to 30s.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}
	return &Hub{
		clients:      make(map[*client]struct{}),
		pingInterval: pingInterval,
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeWS upgrades the request and subscribes it on behalf of identity.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, identity models.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(identity, conn, h.writeTimeout, h.logger, h.remove)
	h.add(c)
	go c.writePump()
	go c.readPump()
	h.logger.Info("session feed subscriber connected", zap.String("user", identity.Username))
}

// PublishSessionEvent delivers event to every subscriber allowed to see it.
func (h *Hub) PublishSessionEvent(event models.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("encode session event failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.identity.CanSee(event.Session.User) {
			c.enqueue(payload)
		}
	}
}

// Len returns number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Start pings subscribers until ctx is done, then disconnects all of them.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.mu.RLock()
			for c := range h.clients {
				if err := c.ping(); err != nil {
					h.logger.Debug("ping failed", zap.String("user", c.identity.Username), zap.Error(err))
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}
