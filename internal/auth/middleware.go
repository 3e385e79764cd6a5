package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"photohire-backend/internal/account"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

const accountContextKey = "account"

// AccountResolver loads the account behind a token subject.
type AccountResolver interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
}

// RequireAccessToken verifies a bearer access token, resolves the backing
// account and injects both into the request context. Refresh tokens are
// rejected here even when otherwise valid. A missing account is reported
// with the same message as a bad token so callers cannot probe for emails.
func RequireAccessToken(m *Manager, accounts AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tok := strings.TrimPrefix(raw, bearerPrefix)

		claims, err := m.Verify(tok, TokenKindAccess, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}

		acct, err := accounts.FindByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), claims.Subject, claims.IsAdmin)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set(accountContextKey, acct)

		c.Next()
	}
}

// AccountFromGin returns the account resolved by RequireAccessToken.
func AccountFromGin(c *gin.Context) (account.Account, bool) {
	v, ok := c.Get(accountContextKey)
	if !ok {
		return account.Account{}, false
	}
	a, ok := v.(account.Account)
	return a, ok
}

// RequireActiveAccount rejects deactivated accounts.
// Must run after RequireAccessToken.
func RequireActiveAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := AccountFromGin(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
			return
		}
		if !a.IsActive {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "inactive user"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. The check trusts the token's
// issuance-time admin snapshot; only refresh exchange re-reads the store.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough permissions"})
			return
		}
		c.Next()
	}
}
