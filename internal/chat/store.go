package chat

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("chat: message not found")

// Store is the persistence contract for chat messages.
type Store interface {
	Save(ctx context.Context, m Message) error
	// Conversation returns the most recent messages exchanged between two
	// accounts in either direction, newest first.
	Conversation(ctx context.Context, a, b string, limit int) ([]Message, error)
	// MarkRead flags every message from sender to receiver as read.
	MarkRead(ctx context.Context, receiverID, senderID string) error
}
