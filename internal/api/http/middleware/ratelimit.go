package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit enforces a fixed window per authenticated identity, falling back
// to the client IP for unauthenticated requests. Exceeding the window yields
// 429 before the request reaches any handler.
func RateLimit(redisClient *redis.Client, maxRequests int, window time.Duration, log *slog.Logger) gin.HandlerFunc {
	if redisClient == nil {
		panic("redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 || window <= 0 {
		panic("maxRequests and window must be positive for RateLimit middleware")
	}
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if userID, ok := CurrentUserID(c); ok {
			identity = userID.String()
		}
		key := "ratelimit:" + c.FullPath() + ":" + identity

		ctx := c.Request.Context()
		count, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// Fail open: an unreachable limiter should not block admissions.
			log.Warn("rate limiter unavailable", slog.String("key", key))
			c.Next()
			return
		}
		// The window starts at the first attempt and is never extended by
		// later ones, so a denied client gets a fresh allowance once the
		// original window lapses.
		if count == 1 {
			if err := redisClient.Expire(ctx, key, window).Err(); err != nil {
				log.Warn("rate limiter expire failed", slog.String("key", key))
			}
		}

		if count > int64(maxRequests) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please wait a moment"})
			c.Abort()
			return
		}

		c.Next()
	}
}
