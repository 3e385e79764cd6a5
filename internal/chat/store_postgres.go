package chat

import (
	"context"
	"database/sql"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE chat_messages (
//     id          UUID PRIMARY KEY,
//     sender_id   UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//     receiver_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//     message     TEXT NOT NULL,
//     is_read     BOOLEAN NOT NULL DEFAULT FALSE,
//     created_at  TIMESTAMPTZ NOT NULL
// );
// CREATE INDEX idx_chat_sender_receiver ON chat_messages (sender_id, receiver_id, created_at);
// CREATE INDEX idx_chat_unread ON chat_messages (receiver_id, is_read);

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, m Message) error {
	const q = `
INSERT INTO chat_messages (id, sender_id, receiver_id, message, is_read, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.SenderID, m.ReceiverID, m.Body, m.IsRead, m.CreatedAt)
	return err
}

func (s *PostgresStore) Conversation(ctx context.Context, a, b string, limit int) ([]Message, error) {
	const q = `
SELECT id, sender_id, receiver_id, message, is_read, created_at
FROM chat_messages
WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at DESC
LIMIT $3
`
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, q, a, b, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, receiverID, senderID string) error {
	const q = `
UPDATE chat_messages
SET is_read = TRUE
WHERE receiver_id = $1 AND sender_id = $2 AND is_read = FALSE
`
	_, err := s.db.ExecContext(ctx, q, receiverID, senderID)
	return err
}
