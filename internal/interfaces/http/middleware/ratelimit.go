package middleware

import (
	"math"
	"strconv"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errRateLimited = shared.NewDomainError(shared.KindRateLimited, shared.CodeRateLimited,
	"Too many requests. Please try again later.")

// KeyFunc derives the rate limit bucket for a request
type KeyFunc func(c *gin.Context) string

// ClientIPKey limits per client address
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimit returns a rate limiting middleware keyed by client IP
func RateLimit(store ratelimit.Store, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(store, ClientIPKey, log)
}

// RateLimitByKey returns a rate limiting middleware with a custom key
// extractor. A failing store lets the request through.
func RateLimitByKey(store ratelimit.Store, keyFunc KeyFunc, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		result, err := store.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("Rate limit store unavailable, allowing request",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			_ = c.Error(errRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
