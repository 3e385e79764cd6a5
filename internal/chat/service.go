package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("chat: sender, receiver and body are required")

type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Save persists a delivered message and returns the stored record.
func (s *Service) Save(ctx context.Context, senderID, receiverID, body string) (Message, error) {
	if senderID == "" || receiverID == "" || body == "" {
		return Message{}, ErrInvalidMessage
	}
	m := Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.store.Save(ctx, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// History returns the conversation between two accounts, newest first, and
// marks messages addressed to the reader as read.
func (s *Service) History(ctx context.Context, readerID, peerID string, limit int) ([]Message, error) {
	msgs, err := s.store.Conversation(ctx, readerID, peerID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkRead(ctx, readerID, peerID); err != nil {
		return nil, err
	}
	return msgs, nil
}
