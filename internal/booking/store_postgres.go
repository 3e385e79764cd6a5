package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"photohire-backend/pkg/utils"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE bookings (
//     id              UUID PRIMARY KEY,
//     customer_id     UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//     photographer_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
//     booking_date    TIMESTAMPTZ NOT NULL,
//     duration_hours  DOUBLE PRECISION NOT NULL,
//     status          TEXT NOT NULL,
//     location        JSONB NOT NULL,
//     total_amount    DOUBLE PRECISION NOT NULL,
//     notes           TEXT,
//     created_at      TIMESTAMPTZ NOT NULL,
//     updated_at      TIMESTAMPTZ NOT NULL
// );
// CREATE INDEX idx_booking_customer ON bookings (customer_id, status);
// CREATE INDEX idx_booking_photographer ON bookings (photographer_id, status);

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, b Booking) error {
	const q = `
INSERT INTO bookings (id, customer_id, photographer_id, booking_date, duration_hours, status, location, total_amount, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	location, err := json.Marshal(b.Location)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q,
		b.ID,
		b.CustomerID,
		b.PhotographerID,
		b.BookingDate,
		b.DurationHours,
		string(b.Status),
		location,
		b.TotalAmount,
		b.Notes,
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Booking, error) {
	const q = `
SELECT id, customer_id, photographer_id, booking_date, duration_hours, status, location, total_amount, notes, created_at, updated_at
FROM bookings
WHERE id = $1
`
	var b Booking
	var status string
	var location []byte
	var notes sql.NullString
	if err := s.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID,
		&b.CustomerID,
		&b.PhotographerID,
		&b.BookingDate,
		&b.DurationHours,
		&status,
		&location,
		&b.TotalAmount,
		&notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, err
	}
	b.Status = Status(status)
	b.Notes = notes.String
	if err := json.Unmarshal(location, &b.Location); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Update writes the booking's mutable fields. Reaching completed also bumps
// the photographer's denormalized total_bookings counter, in the same
// transaction so the counter never drifts from the bookings table.
func (s *PostgresStore) Update(ctx context.Context, b Booking) error {
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE bookings
SET status = $2, notes = $3, updated_at = $4
WHERE id = $1
`
		res, err := tx.ExecContext(ctx, q, b.ID, string(b.Status), b.Notes, b.UpdatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		if b.Status != StatusCompleted {
			return nil
		}
		const bump = `
UPDATE photographers
SET total_bookings = total_bookings + 1, updated_at = $2
WHERE user_id = $1
`
		_, err = tx.ExecContext(ctx, bump, b.PhotographerID, b.UpdatedAt)
		return err
	})
}
