package auth

import "github.com/golang-jwt/jwt/v5"

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Subject carries the account email. IsRefresh discriminates access tokens
// from refresh tokens; an access endpoint must never accept a refresh token.
// IsAdmin is a snapshot taken at issuance time and is only re-derived from
// the store on refresh exchange.
type Claims struct {
	jwt.RegisteredClaims

	IsRefresh bool `json:"is_refresh"`
	IsAdmin   bool `json:"is_admin,omitempty"`
}

// Kind reports which token kind the discriminator encodes.
func (c Claims) Kind() TokenKind {
	if c.IsRefresh {
		return TokenKindRefresh
	}
	return TokenKindAccess
}
