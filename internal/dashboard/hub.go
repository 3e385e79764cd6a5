package dashboard

import (
	"log/slog"
	"sync"
	"time"
)

// Category names a dashboard connection pool.
type Category string

const (
	CategoryAdmin   Category = "admin"
	CategoryMetrics Category = "metrics"
	CategoryAlerts  Category = "alerts"
)

// Known reports whether the category maps to a tracked pool. Connections
// with unknown categories are still accepted; they just never receive
// broadcasts.
func (c Category) Known() bool {
	switch c {
	case CategoryAdmin, CategoryMetrics, CategoryAlerts:
		return true
	}
	return false
}

// Conn is the write side of a dashboard connection.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// outbound is the single frame shape for everything the hub sends. Broadcast
// frames carry a timestamp; protocol replies (pong, metrics_response) do not.
type outbound struct {
	Type      string     `json:"type"`
	Data      any        `json:"data,omitempty"`
	AlertType string     `json:"alert_type,omitempty"`
	Message   string     `json:"message,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Hub tracks live dashboard connections in three category pools. Pools keep
// insertion order so broadcast delivery order is stable.
type Hub struct {
	log   *slog.Logger
	clock func() time.Time

	mu    sync.Mutex
	pools map[Category][]Conn
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:   log,
		clock: time.Now,
		pools: map[Category][]Conn{
			CategoryAdmin:   nil,
			CategoryMetrics: nil,
			CategoryAlerts:  nil,
		},
	}
}

// Connect tracks the connection under its category. Unknown categories are
// accepted but untracked; the caller keeps serving request/response traffic
// on the connection either way.
func (h *Hub) Connect(c Conn, category Category) {
	if !category.Known() {
		h.log.Debug("dashboard connection untracked", "category", string(category))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pools[category] = append(h.pools[category], c)
}

// Disconnect removes the connection from its pool. Removing a connection
// that is not a member is a no-op.
func (h *Hub) Disconnect(c Conn, category Category) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, category)
}

func (h *Hub) removeLocked(c Conn, category Category) {
	pool := h.pools[category]
	for i, member := range pool {
		if member == c {
			h.pools[category] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}

// BroadcastMetrics sends a metrics_update frame to the metrics pool.
func (h *Hub) BroadcastMetrics(payload any) {
	now := h.clock().UTC()
	h.broadcast(CategoryMetrics, outbound{
		Type:      "metrics_update",
		Data:      payload,
		Timestamp: &now,
	})
}

// BroadcastAlert sends an alert frame to the alerts pool.
func (h *Hub) BroadcastAlert(alertType, message string) {
	now := h.clock().UTC()
	h.broadcast(CategoryAlerts, outbound{
		Type:      "alert",
		AlertType: alertType,
		Message:   message,
		Timestamp: &now,
	})
}

// SendAdminMessage sends an admin_message frame to the admin pool.
func (h *Hub) SendAdminMessage(payload any) {
	now := h.clock().UTC()
	h.broadcast(CategoryAdmin, outbound{
		Type:      "admin_message",
		Data:      payload,
		Timestamp: &now,
	})
}

// broadcast delivers the frame to every pool member in insertion order. A
// connection that fails its write is dropped from the pool; delivery to the
// remaining members continues.
func (h *Hub) broadcast(category Category, msg outbound) {
	h.mu.Lock()
	pool := make([]Conn, len(h.pools[category]))
	copy(pool, h.pools[category])
	h.mu.Unlock()

	var dead []Conn
	for _, c := range pool {
		if err := c.WriteJSON(msg); err != nil {
			h.log.Warn("dashboard broadcast delivery failed", "category", string(category), "err", err)
			dead = append(dead, c)
		}
	}
	if len(dead) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range dead {
		h.removeLocked(c, category)
	}
	h.mu.Unlock()
	for _, c := range dead {
		_ = c.Close()
	}
}

// Sessions reports the number of tracked connections across all pools.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, pool := range h.pools {
		n += len(pool)
	}
	return n
}

// Close tears down every tracked connection. Used at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	var conns []Conn
	for category, pool := range h.pools {
		conns = append(conns, pool...)
		h.pools[category] = nil
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
