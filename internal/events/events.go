package events

import "time"

// Queue names. Consumers declare the same queues, so both sides converge on
// identical durable declarations.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueMessageSent      = "chat.message.sent"
)

// BookingConfirmed is published when a booking transitions to confirmed.
type BookingConfirmed struct {
	BookingID      string    `json:"booking_id"`
	CustomerID     string    `json:"customer_id"`
	PhotographerID string    `json:"photographer_id"`
	BookingDate    time.Time `json:"booking_date"`
	TotalAmount    float64   `json:"total_amount"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

// MessageSent is published after a chat message is delivered or stored, so
// downstream consumers can fan out push notifications.
type MessageSent struct {
	MessageID  string    `json:"message_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	SentAt     time.Time `json:"sent_at"`
}
