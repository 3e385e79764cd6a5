package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// KeyFunc derives the rate-limit key for a request. An empty key skips
// limiting for that request.
type KeyFunc func(c *gin.Context) string

// Middleware enforces the limiter per derived key. Limiter outages fail
// open: a backend error must not take down every authenticated endpoint.
func Middleware(l Limiter, key KeyFunc, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := l.Allow(c.Request.Context(), k)
		if err != nil {
			log.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 0 {
				secs = 0
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": secs,
			})
			return
		}
		c.Next()
	}
}
