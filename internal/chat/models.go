package chat

import "time"

// Message is a persisted chat message between two accounts. Realtime
// delivery is best-effort and separate; this record is the durable copy.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Body       string
	IsRead     bool
	CreatedAt  time.Time
}
