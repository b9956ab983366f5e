package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/config"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/response"
)

// ViolationRateLimiter limits violation reports per session using a Redis
// fixed window: one INCR per request on a window-scoped key with a TTL,
// so limits survive restarts and are shared across instances.
type ViolationRateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// NewViolationRateLimiter creates a limiter (e.g., 30 events per minute).
func NewViolationRateLimiter(rdb *redis.Client, limit int64, window time.Duration) *ViolationRateLimiter {
	return &ViolationRateLimiter{rdb: rdb, limit: limit, window: window}
}

// Middleware returns a Gin middleware keyed by the session_id path param.
// A Redis outage fails open: the violation endpoint is advisory and must
// not reject legitimate traffic because the limiter store is down.
func (rl *ViolationRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")
		if sessionID == "" {
			c.Next()
			return
		}

		windowStart := time.Now().Unix() / int64(rl.window.Seconds())
		key := config.CacheKey.ViolationRateKey(sessionID, windowStart)

		ctx := c.Request.Context()
		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rl.rdb.Expire(ctx, key, rl.window)
		}

		if count > rl.limit {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}
