package realtime

import (
	"log/slog"
	"sync"
	"time"
)

// RoomLocationUpdates is the room every live-location subscriber joins.
// Rooms are general; this is the only name current call sites use.
const RoomLocationUpdates = "location_updates"

// Conn is the minimal connection surface the hub needs. *websocket.Conn is
// wrapped (see wsConn) so writes are serialized; tests supply fakes.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Hub tracks live connections by user identity and room membership.
//
// All maps are guarded by one coarse mutex; per-event work is tiny. The
// identity maps form a bidirectional index so disconnect does not need a
// linear scan. At most one connection per identity: a later Register for
// the same identity replaces the earlier binding (last write wins).
type Hub struct {
	log   *slog.Logger
	clock func() time.Time

	mu       sync.Mutex
	byUser   map[string]Conn
	identity map[Conn]string
	rooms    map[string]map[Conn]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:      log,
		clock:    time.Now,
		byUser:   make(map[string]Conn),
		identity: make(map[Conn]string),
		rooms:    make(map[string]map[Conn]struct{}),
	}
}

// Register binds a user identity to a connection, replacing any prior
// binding for that identity or that connection.
func (h *Hub) Register(c Conn, userID string) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.byUser[userID]; ok && old != c {
		delete(h.identity, old)
	}
	if prev, ok := h.identity[c]; ok && prev != userID {
		delete(h.byUser, prev)
	}
	h.byUser[userID] = c
	h.identity[c] = userID

	h.log.Debug("user registered", "user_id", userID)
}

// Unregister removes the connection's identity binding and every room
// membership. Safe to call for connections that never registered.
func (h *Hub) Unregister(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userID, ok := h.identity[c]; ok {
		delete(h.identity, c)
		if h.byUser[userID] == c {
			delete(h.byUser, userID)
		}
		h.log.Debug("user unregistered", "user_id", userID)
	}
	for name, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, name)
		}
	}
}

// JoinRoom adds the connection to a room. Idempotent.
func (h *Hub) JoinRoom(c Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[Conn]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
}

// LeaveRoom removes the connection from a room. Idempotent.
func (h *Hub) LeaveRoom(c Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// SendMessage delivers a chat message to the receiver's live connection.
// Delivery is best-effort: an offline receiver means a silent drop, and a
// write failure is logged without propagating. Durable storage is the
// caller's concern, not the hub's.
func (h *Hub) SendMessage(senderID, receiverID, text string) {
	h.mu.Lock()
	c, online := h.byUser[receiverID]
	now := h.clock().UTC()
	h.mu.Unlock()

	if !online {
		return
	}

	err := c.WriteJSON(envelope{
		Event: EventNewMessage,
		Data: NewMessageData{
			SenderID:  senderID,
			Message:   text,
			Timestamp: now,
		},
	})
	if err != nil {
		h.log.Warn("message delivery failed", "receiver_id", receiverID, "err", err)
	}
}

// BroadcastLocation pushes a location update to every connection in the
// location room. A failure against one connection never blocks the rest.
func (h *Hub) BroadcastLocation(photographerID string, lat, lon float64) {
	h.mu.Lock()
	members := make([]Conn, 0, len(h.rooms[RoomLocationUpdates]))
	for c := range h.rooms[RoomLocationUpdates] {
		members = append(members, c)
	}
	now := h.clock().UTC()
	h.mu.Unlock()

	msg := envelope{
		Event: EventLocationUpdate,
		Data: LocationUpdateData{
			PhotographerID: photographerID,
			Latitude:       lat,
			Longitude:      lon,
			Timestamp:      now,
		},
	}
	for _, c := range members {
		if err := c.WriteJSON(msg); err != nil {
			h.log.Warn("location broadcast delivery failed", "err", err)
		}
	}
}

// ActiveUsers reports how many identities currently have a live connection.
func (h *Hub) ActiveUsers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser)
}

// Close tears down every tracked connection. Used at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make(map[Conn]struct{}, len(h.identity))
	for c := range h.identity {
		conns[c] = struct{}{}
	}
	for _, room := range h.rooms {
		for c := range room {
			conns[c] = struct{}{}
		}
	}
	h.byUser = make(map[string]Conn)
	h.identity = make(map[Conn]string)
	h.rooms = make(map[string]map[Conn]struct{})
	h.mu.Unlock()

	for c := range conns {
		_ = c.Close()
	}
}
