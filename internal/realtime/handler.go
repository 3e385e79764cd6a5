package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"photohire-backend/internal/chat"
	"photohire-backend/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// MessageSink durably stores delivered chat messages. Optional; the hub's
// delivery never depends on it.
type MessageSink interface {
	Save(ctx context.Context, senderID, receiverID, body string) (chat.Message, error)
}

// MessagePublisher fans a stored message out to downstream consumers.
// Optional, best-effort.
type MessagePublisher interface {
	PublishMessageSent(ctx context.Context, e events.MessageSent) error
}

// Handler upgrades HTTP requests to realtime connections and runs one read
// loop per connection.
type Handler struct {
	hub       *Hub
	messages  MessageSink
	publisher MessagePublisher
	log       *slog.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(hub *Hub, messages MessageSink, publisher MessagePublisher, log *slog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		messages:  messages,
		publisher: publisher,
		log:       log,
		upgrader: websocket.Upgrader{
			// The mobile clients connect from app webviews with no Origin
			// header; checks happen at the API gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/realtime. Connections are accepted unconditionally;
// identity arrives later via a register_user event.
func (h *Handler) Serve(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	conn := &wsConn{ws: ws}
	defer func() {
		h.hub.Unregister(conn)
		_ = conn.Close()
	}()

	ctx := c.Request.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		h.handle(ctx, conn, data)
	}
}

// handle dispatches one inbound frame. Malformed payloads and unknown
// events are ignored; a bad message must never kill the connection.
func (h *Handler) handle(ctx context.Context, conn Conn, data []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.log.Debug("malformed realtime frame dropped", "err", err)
		return
	}

	switch env.Event {
	case EventRegisterUser:
		var p RegisterUserData
		if err := json.Unmarshal(env.Data, &p); err != nil || p.UserID == "" {
			return
		}
		h.hub.Register(conn, p.UserID)

	case EventSendMessage:
		var p SendMessageData
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		h.hub.SendMessage(p.SenderID, p.ReceiverID, p.Message)
		h.persist(ctx, p)

	case EventUpdateLocation:
		var p UpdateLocationData
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		h.hub.BroadcastLocation(p.PhotographerID, p.Latitude, p.Longitude)

	case EventJoinLocationUpdates:
		h.hub.JoinRoom(conn, RoomLocationUpdates)

	case EventLeaveLocationUpdates:
		h.hub.LeaveRoom(conn, RoomLocationUpdates)

	default:
		// Unknown events are protocol noise, not errors.
	}
}

// persist stores the message and announces it. Both steps are best-effort
// and must not affect realtime delivery.
func (h *Handler) persist(ctx context.Context, p SendMessageData) {
	if h.messages == nil {
		return
	}
	m, err := h.messages.Save(ctx, p.SenderID, p.ReceiverID, p.Message)
	if err != nil {
		h.log.Warn("chat message not persisted", "err", err)
		return
	}
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishMessageSent(ctx, events.MessageSent{
		MessageID:  m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		SentAt:     m.CreatedAt,
	}); err != nil {
		h.log.Warn("message sent event not published", "err", err)
	}
}

// wsConn serializes writes; gorilla/websocket supports at most one
// concurrent writer per connection.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}
