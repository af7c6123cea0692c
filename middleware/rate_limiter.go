// middleware/rate_limiter.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const DefaultWindow = time.Minute

// RateLimiterConfig defines rules for one endpoint group.
type RateLimiterConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
	KeyPrefix         string
}

// RateLimiter counts requests per client key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, cfg RateLimiterConfig) (bool, error)
}

type redisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	return &redisRateLimiter{client: client}
}

// Allow increments the window counter and expires it on first hit.
// Fixed window is enough here: the auth endpoints are low-volume and
// the OTP itself is single-use.
func (r *redisRateLimiter) Allow(ctx context.Context, key string, cfg RateLimiterConfig) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", cfg.KeyPrefix, key)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, cfg.WindowDuration).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(cfg.RequestsPerWindow), nil
}

// RateLimitMiddleware applies cfg per client IP. Limiter errors fail
// open: an unavailable redis must not lock everyone out of login.
func RateLimitMiddleware(limiter RateLimiter, cfg RateLimiterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP(), cfg)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
