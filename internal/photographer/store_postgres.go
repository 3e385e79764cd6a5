package photographer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE photographers (
//     user_id          UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
//     portfolio_urls   JSONB NOT NULL DEFAULT '[]',
//     specialties      JSONB NOT NULL DEFAULT '[]',
//     hourly_rate      DOUBLE PRECISION NOT NULL,
//     city             TEXT NOT NULL,
//     current_location JSONB,
//     rating           DOUBLE PRECISION,
//     total_bookings   INTEGER NOT NULL DEFAULT 0,
//     created_at       TIMESTAMPTZ NOT NULL,
//     updated_at       TIMESTAMPTZ NOT NULL
// );
// CREATE INDEX idx_photographer_city ON photographers (city);
// CREATE INDEX idx_photographer_rating ON photographers (rating);

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, p Profile) error {
	const q = `
INSERT INTO photographers (user_id, portfolio_urls, specialties, hourly_rate, city, current_location, rating, total_bookings, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	portfolio, err := json.Marshal(p.PortfolioURLs)
	if err != nil {
		return err
	}
	specialties, err := json.Marshal(p.Specialties)
	if err != nil {
		return err
	}
	var location []byte
	if p.CurrentLocation != nil {
		if location, err = json.Marshal(p.CurrentLocation); err != nil {
			return err
		}
	}

	_, err = s.db.ExecContext(ctx, q,
		p.UserID,
		portfolio,
		specialties,
		p.HourlyRate,
		p.City,
		nullableBytes(location),
		p.Rating,
		p.TotalBookings,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	const q = `
SELECT user_id, portfolio_urls, specialties, hourly_rate, city, current_location, rating, total_bookings, created_at, updated_at
FROM photographers
WHERE user_id = $1
`
	return scanProfile(s.db.QueryRowContext(ctx, q, userID))
}

func (s *PostgresStore) ListByCity(ctx context.Context, city string) ([]Profile, error) {
	const qAll = `
SELECT user_id, portfolio_urls, specialties, hourly_rate, city, current_location, rating, total_bookings, created_at, updated_at
FROM photographers
ORDER BY rating DESC NULLS LAST
`
	const qCity = `
SELECT user_id, portfolio_urls, specialties, hourly_rate, city, current_location, rating, total_bookings, created_at, updated_at
FROM photographers
WHERE lower(city) = lower($1)
ORDER BY rating DESC NULLS LAST
`
	var rows *sql.Rows
	var err error
	if city == "" {
		rows, err = s.db.QueryContext(ctx, qAll)
	} else {
		rows, err = s.db.QueryContext(ctx, qCity, city)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateLocation(ctx context.Context, userID string, loc GeoPoint) error {
	const q = `
UPDATE photographers
SET current_location = $2, updated_at = $3
WHERE user_id = $1
`
	location, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, q, userID, location, time.Now().UTC())
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
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var portfolio, specialties []byte
	var location []byte
	if err := row.Scan(
		&p.UserID,
		&portfolio,
		&specialties,
		&p.HourlyRate,
		&p.City,
		&location,
		&p.Rating,
		&p.TotalBookings,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if err := json.Unmarshal(portfolio, &p.PortfolioURLs); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal(specialties, &p.Specialties); err != nil {
		return Profile{}, err
	}
	if len(location) > 0 {
		var gp GeoPoint
		if err := json.Unmarshal(location, &gp); err != nil {
			return Profile{}, err
		}
		p.CurrentLocation = &gp
	}
	return p, nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
