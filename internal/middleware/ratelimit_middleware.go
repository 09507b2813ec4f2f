package middleware

import (
	"math"
	"net/http"
	"strconv"

	"ballotbox/internal/ratelimit"
	"ballotbox/internal/services"
	"ballotbox/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware counts one request against the caller's window for
// the given action. The subject is the authenticated user id when present,
// the client IP otherwise, so unauthenticated traffic is limited too.
func RateLimitMiddleware(limiter *ratelimit.Limiter, action ratelimit.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.ClientIP()
		if userID, ok := services.UserIDFromContext(c.Request.Context()); ok {
			subject = userID.String()
		}

		decision := limiter.Allow(ratelimit.Key{Subject: subject, Action: action})
		setRateLimitHeaders(c, decision)

		if !decision.Allowed {
			c.Header("Retry-After", strconv.FormatInt(retryAfterSeconds(decision), 10))
			c.JSON(http.StatusTooManyRequests, httpdto.NewErrorResponse("rate limit exceeded", "RATE_LIMITED"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(retryAfterSeconds(decision), 10))
}

func retryAfterSeconds(decision ratelimit.Decision) int64 {
	return int64(math.Ceil(decision.RetryAfter.Seconds()))
}
