package auth

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRefreshToken covers every refresh-exchange failure: bad
// signature, expiry, a non-refresh token presented, or a subject that no
// longer resolves to an account.
var ErrInvalidRefreshToken = errors.New("auth: invalid refresh token")

// Refresher exchanges a valid refresh token for a fresh token pair.
// The new pair carries the account's current admin flag, re-read from the
// store, not the snapshot baked into the old token.
type Refresher struct {
	manager  *Manager
	accounts AccountResolver
	clock    func() time.Time
}

func NewRefresher(manager *Manager, accounts AccountResolver) *Refresher {
	return &Refresher{manager: manager, accounts: accounts, clock: time.Now}
}

func (r *Refresher) Exchange(ctx context.Context, refreshToken string) (TokenPair, error) {
	now := r.clock()

	claims, err := r.manager.Verify(refreshToken, TokenKindRefresh, now)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	acct, err := r.accounts.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	return r.manager.IssuePair(now, acct.Email, acct.IsAdmin)
}
