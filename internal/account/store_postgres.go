package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE users (
//     id              UUID PRIMARY KEY,
//     email           TEXT NOT NULL UNIQUE,
//     full_name       TEXT NOT NULL,
//     hashed_password TEXT NOT NULL,
//     user_type       TEXT NOT NULL,
//     is_active       BOOLEAN NOT NULL DEFAULT TRUE,
//     is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
//     created_at      TIMESTAMPTZ NOT NULL,
//     updated_at      TIMESTAMPTZ NOT NULL,
//     deleted_at      TIMESTAMPTZ
// );

const pgUniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a Account) error {
	const q = `
INSERT INTO users (id, email, full_name, hashed_password, user_type, is_active, is_admin, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err := s.db.ExecContext(ctx, q,
		a.ID,
		a.Email,
		a.FullName,
		a.HashedPassword,
		string(a.UserType),
		a.IsActive,
		a.IsAdmin,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const q = `
SELECT id, email, full_name, hashed_password, user_type, is_active, is_admin, created_at, updated_at, deleted_at
FROM users
WHERE lower(email) = lower($1) AND deleted_at IS NULL
`
	var a Account
	var userType string
	if err := s.db.QueryRowContext(ctx, q, email).Scan(
		&a.ID,
		&a.Email,
		&a.FullName,
		&a.HashedPassword,
		&userType,
		&a.IsActive,
		&a.IsAdmin,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.DeletedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.UserType = UserType(userType)
	return a, nil
}

func (s *PostgresStore) Update(ctx context.Context, a Account) error {
	const q = `
UPDATE users
SET full_name = $2, hashed_password = $3, user_type = $4, is_active = $5, is_admin = $6, updated_at = $7
WHERE lower(email) = lower($1) AND deleted_at IS NULL
`
	res, err := s.db.ExecContext(ctx, q,
		a.Email,
		a.FullName,
		a.HashedPassword,
		string(a.UserType),
		a.IsActive,
		a.IsAdmin,
		a.UpdatedAt,
	)
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
