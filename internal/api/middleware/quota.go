package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fintrack/fintrack_service/pkg/logger"
	"github.com/fintrack/fintrack_service/pkg/ratelimit"
)

// QuotaLimiter is a shared per-key limiter such as ratelimit.SlidingWindow
type QuotaLimiter interface {
	Allow(ctx context.Context, key string) (*ratelimit.Result, error)
}

// UserQuota caps how often each authenticated user may hit the wrapped routes.
// AI-backed endpoints use it to bound provider spend. The limiter fails open.
func UserQuota(limiter QuotaLimiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := c.Get("user_id")
		userID, isUUID := caller.(uuid.UUID)
		if !ok || !isUUID {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), userID.String())
		if err != nil {
			log.Warn("Quota check failed, allowing request", "error", err, "user_id", userID.String())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		if !res.Allowed {
			retryAfter := int(res.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Hourly analysis quota exhausted")
			return
		}
		c.Next()
	}
}
