package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"photohire-backend/internal/account"
)

func TestRefreshExchangeUsesCurrentAdminFlag(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	ctx := context.Background()

	if err := store.Create(ctx, account.Account{
		ID: "1", Email: "alice@example.com", UserType: account.UserTypeCustomer, IsActive: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	now := time.Now()
	old, err := m.IssuePair(now, "alice@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Elevate the account after the old pair was issued.
	a, _ := store.FindByEmail(ctx, "alice@example.com")
	a.IsAdmin = true
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}

	r := NewRefresher(m, store)
	fresh, err := r.Exchange(ctx, old.RefreshToken)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	claims, err := m.Verify(fresh.AccessToken, TokenKindAccess, time.Now())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !claims.IsAdmin {
		t.Fatalf("expected refreshed access token to carry the store's current admin flag")
	}
}

func TestRefreshExchangeRejectsAccessToken(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()
	ctx := context.Background()

	_ = store.Create(ctx, account.Account{ID: "1", Email: "alice@example.com", IsActive: true})

	pair, err := m.IssuePair(time.Now(), "alice@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := NewRefresher(m, store)
	if _, err := r.Exchange(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshExchangeRejectsUnknownSubject(t *testing.T) {
	m := newTestManager(t)
	store := account.NewMemoryStore()

	pair, err := m.IssuePair(time.Now(), "ghost@example.com", false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := NewRefresher(m, store)
	if _, err := r.Exchange(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshExchangeRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	r := NewRefresher(m, account.NewMemoryStore())
	if _, err := r.Exchange(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
