package realtime

import (
	"encoding/json"
	"time"
)

// Client-emitted events.
const (
	EventRegisterUser         = "register_user"
	EventSendMessage          = "send_message"
	EventUpdateLocation       = "update_location"
	EventJoinLocationUpdates  = "join_location_updates"
	EventLeaveLocationUpdates = "leave_location_updates"
)

// Server-emitted events.
const (
	EventNewMessage     = "new_message"
	EventLocationUpdate = "location_update"
)

// envelope is the framing for every message in both directions:
// a named event plus an event-specific payload.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundEnvelope defers payload decoding until the event is known.
type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type RegisterUserData struct {
	UserID string `json:"user_id"`
}

type SendMessageData struct {
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Message    string `json:"message"`
}

type UpdateLocationData struct {
	PhotographerID string  `json:"photographer_id"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

type NewMessageData struct {
	SenderID  string    `json:"sender_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type LocationUpdateData struct {
	PhotographerID string    `json:"photographer_id"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Timestamp      time.Time `json:"timestamp"`
}
