package photographer

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store useful for tests.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile // keyed by user ID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Create(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
	return nil
}

func (s *MemoryStore) GetByUserID(ctx context.Context, userID string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListByCity(ctx context.Context, city string) ([]Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Profile
	for _, p := range s.profiles {
		if city == "" || strings.EqualFold(p.City, city) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateLocation(ctx context.Context, userID string, loc GeoPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	point := loc
	p.CurrentLocation = &point
	p.UpdatedAt = time.Now().UTC()
	s.profiles[userID] = p
	return nil
}
