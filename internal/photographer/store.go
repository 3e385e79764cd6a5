package photographer

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("photographer: profile not found")

// Store is the persistence contract for photographer profiles.
type Store interface {
	Create(ctx context.Context, p Profile) error
	GetByUserID(ctx context.Context, userID string) (Profile, error)
	// ListByCity returns every profile in the city; an empty city lists all.
	ListByCity(ctx context.Context, city string) ([]Profile, error)
	UpdateLocation(ctx context.Context, userID string, loc GeoPoint) error
}
