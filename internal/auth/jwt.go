package auth

import (
	"errors"
	"time"

	"photohire-backend/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the literal returned alongside every issued pair.
const TokenType = "bearer"

var (
	// ErrInvalidToken covers signature, expiry and malformed-claims failures.
	// Callers must not distinguish these to the client.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrWrongTokenKind is returned when a token parses and verifies but its
	// is_refresh discriminator does not match what the caller expects.
	ErrWrongTokenKind = errors.New("auth: wrong token kind")
)

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}, nil
}

// TokenPair is what login and refresh exchange hand back to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

/* ===================== ISSUE TOKENS ===================== */

// IssuePair mints an access/refresh pair for the given subject. Both tokens
// share the subject and admin snapshot; they differ in TTL and discriminator.
func (m *Manager) IssuePair(now time.Time, subject string, isAdmin bool) (TokenPair, error) {
	access, err := m.issue(now, subject, isAdmin, false, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := m.issue(now, subject, isAdmin, true, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
	}, nil
}

/* ===================== VERIFY TOKEN ===================== */

// Verify parses and validates a token, then checks that its discriminator
// matches the expected kind. A kind mismatch is a distinct failure from a
// bad signature or expiry so that it can be observed in tests, but both map
// to the same client-facing rejection.
func (m *Manager) Verify(tokenString string, expected TokenKind, now time.Time) (Claims, error) {
	var claims Claims

	// The parser checks signature and algorithm only; claims are validated
	// below against the caller's clock, not the wall clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	validator := jwt.NewValidator(
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(30*time.Second), // clock skew tolerance
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err := validator.Validate(claims.RegisteredClaims); err != nil {
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind() != expected {
		return Claims{}, ErrWrongTokenKind
	}

	return claims, nil
}

/* ===================== INTERNAL ISSUE ===================== */

func (m *Manager) issue(now time.Time, subject string, isAdmin, isRefresh bool, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		IsRefresh: isRefresh,
		IsAdmin:   isAdmin,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}
