package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// inbound is the request/response protocol every dashboard connection
// speaks, tracked or not.
type inbound struct {
	Type string `json:"type"`
}

// Handler serves GET /ws/dashboard/:client_type.
type Handler struct {
	hub      *Hub
	metrics  MetricsSource
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, metrics MetricsSource, log *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		metrics: metrics,
		log:     log,
		upgrader: websocket.Upgrader{
			// Dashboard clients are internal tooling; origin enforcement
			// happens at the API gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Serve(c *gin.Context) {
	category := Category(c.Param("client_type"))

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("dashboard websocket upgrade failed", "err", err)
		return
	}

	conn := &wsConn{ws: ws}
	h.hub.Connect(conn, category)
	defer func() {
		h.hub.Disconnect(conn, category)
		_ = conn.Close()
	}()

	ctx := c.Request.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.log.Debug("malformed dashboard frame dropped", "err", err)
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(conn, outbound{Type: "pong"})
		case "metrics_request":
			snap := MetricsSnapshot{SystemHealth: "good"}
			if h.metrics != nil {
				s, err := h.metrics.Snapshot(ctx)
				if err != nil {
					h.log.Warn("metrics snapshot failed", "err", err)
				} else {
					snap = s
				}
			}
			h.reply(conn, outbound{Type: "metrics_response", Data: snap})
		default:
			// Unrecognized types get no reply.
		}
	}
}

func (h *Handler) reply(conn Conn, msg outbound) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn("dashboard reply failed", "err", err)
	}
}

// wsConn serializes writes; broadcasts and protocol replies can race on the
// same connection.
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
