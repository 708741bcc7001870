package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	WindowSeconds     int
	Enabled           bool
}

// RateLimiter implements per-client request rate limiting using Redis.
type RateLimiter struct {
	client *redis.Client
	config RateLimiterConfig
	log    *zap.Logger
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(client *redis.Client, config RateLimiterConfig, log *zap.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		config: config,
		log:    log,
	}
}

// Counting window implemented in Lua so increment and expiry are atomic.
const rateLimitScript = `
	local key = KEYS[1]
	local window = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('EXPIRE', key, window)
	end

	return count
`

// Handler returns a Gin middleware enforcing the configured limit per
// client IP and route. Redis errors fail open: the request proceeds.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.config.Enabled {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:%s:%s:%s", c.Request.Method, c.FullPath(), clientIP)

		maxRequests := int64(rl.config.RequestsPerSecond * float64(rl.config.WindowSeconds))

		count, err := rl.client.Eval(c.Request.Context(), rateLimitScript,
			[]string{key}, rl.config.WindowSeconds).Int64()
		if err != nil {
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > maxRequests {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.FullPath()),
				zap.Int64("count", count),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limit_exceeded",
				"message": fmt.Sprintf("rate limit exceeded: %d requests in %d seconds (limit: %.0f req/s)",
					count, rl.config.WindowSeconds, rl.config.RequestsPerSecond),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
