package account

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("account: not found")
	ErrEmailTaken = errors.New("account: email already registered")
)

// Store is the persistence contract for accounts.
// FindByEmail must not return soft-deleted rows.
type Store interface {
	Create(ctx context.Context, a Account) error
	FindByEmail(ctx context.Context, email string) (Account, error)
	Update(ctx context.Context, a Account) error
}
