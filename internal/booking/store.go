package booking

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("booking: not found")

// Store is the persistence contract for bookings.
type Store interface {
	Create(ctx context.Context, b Booking) error
	Get(ctx context.Context, id string) (Booking, error)
	Update(ctx context.Context, b Booking) error
}
