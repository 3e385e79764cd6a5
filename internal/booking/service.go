package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"photohire-backend/internal/events"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("booking: invalid input")
	ErrBadTransition  = errors.New("booking: illegal status transition")
	ErrNotParticipant = errors.New("booking: caller is not a participant")
	ErrDateInPast     = errors.New("booking: booking date is in the past")
)

// EventPublisher is the slice of the event bus this service needs.
// A nil publisher disables events.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, e events.BookingConfirmed) error
}

type Service struct {
	store     Store
	publisher EventPublisher
	log       *slog.Logger
	clock     func() time.Time
}

func NewService(store Store, publisher EventPublisher, log *slog.Logger) *Service {
	return &Service{store: store, publisher: publisher, log: log, clock: time.Now}
}

type CreateInput struct {
	CustomerID     string
	PhotographerID string
	BookingDate    time.Time
	DurationHours  float64
	Location       Location
	TotalAmount    float64
	Notes          string
}

// Create records a new booking in pending state.
func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	if in.CustomerID == "" || in.PhotographerID == "" {
		return Booking{}, fmt.Errorf("%w: customer and photographer are required", ErrInvalidInput)
	}
	if in.CustomerID == in.PhotographerID {
		return Booking{}, fmt.Errorf("%w: customer cannot book themselves", ErrInvalidInput)
	}
	if in.DurationHours <= 0 {
		return Booking{}, fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}
	if in.TotalAmount < 0 {
		return Booking{}, fmt.Errorf("%w: amount cannot be negative", ErrInvalidInput)
	}

	now := s.clock().UTC()
	if in.BookingDate.Before(now) {
		return Booking{}, ErrDateInPast
	}

	b := Booking{
		ID:             uuid.NewString(),
		CustomerID:     in.CustomerID,
		PhotographerID: in.PhotographerID,
		BookingDate:    in.BookingDate.UTC(),
		DurationHours:  in.DurationHours,
		Status:         StatusPending,
		Location:       in.Location,
		TotalAmount:    in.TotalAmount,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

// Get returns a booking, restricted to its two participants.
func (s *Service) Get(ctx context.Context, id, callerID string) (Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.CustomerID != callerID && b.PhotographerID != callerID {
		return Booking{}, ErrNotParticipant
	}
	return b, nil
}

// Transition moves a booking to the next status, enforcing the state
// machine. Confirmation publishes a booking.confirmed event best-effort.
func (s *Service) Transition(ctx context.Context, id, callerID string, next Status) (Booking, error) {
	if !next.Valid() {
		return Booking{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.CustomerID != callerID && b.PhotographerID != callerID {
		return Booking{}, ErrNotParticipant
	}
	if !b.Status.CanTransitionTo(next) {
		return Booking{}, fmt.Errorf("%w: %s -> %s", ErrBadTransition, b.Status, next)
	}

	now := s.clock().UTC()
	b.Status = next
	b.UpdatedAt = now
	if err := s.store.Update(ctx, b); err != nil {
		return Booking{}, err
	}

	if next == StatusConfirmed && s.publisher != nil {
		if err := s.publisher.PublishBookingConfirmed(ctx, events.BookingConfirmed{
			BookingID:      b.ID,
			CustomerID:     b.CustomerID,
			PhotographerID: b.PhotographerID,
			BookingDate:    b.BookingDate,
			TotalAmount:    b.TotalAmount,
			ConfirmedAt:    now,
		}); err != nil {
			s.log.Warn("booking confirmed event not published", "booking_id", b.ID, "err", err)
		}
	}
	return b, nil
}
