package account

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account // keyed by lowercase email
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) Create(ctx context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := s.accounts[key]; ok {
		return ErrEmailTaken
	}
	s.accounts[key] = a
	return nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok || a.DeletedAt != nil {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) Update(ctx context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := s.accounts[key]; !ok {
		return ErrNotFound
	}
	s.accounts[key] = a
	return nil
}
