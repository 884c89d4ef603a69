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

// RateLimiter implements HTTP rate limiting using Redis.
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

// Handler returns a Gin middleware enforcing a fixed-window limit per
// client IP and route. Redis errors fail open.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	// Atomic increment with expiry
	const luaScript = `
		local key = KEYS[1]
		local window = tonumber(ARGV[1])
		local max_requests = tonumber(ARGV[2])

		local count = redis.call('INCR', key)
		if count == 1 then
			redis.call('EXPIRE', key, window)
		end

		return count
	`

	return func(c *gin.Context) {
		if !rl.config.Enabled || rl.client == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("ratelimit:%s:%s:%s", c.Request.Method, c.FullPath(), clientIP)

		maxRequests := int(rl.config.RequestsPerSecond * float64(rl.config.WindowSeconds))

		count, err := rl.client.Eval(c.Request.Context(), luaScript, []string{key},
			rl.config.WindowSeconds, maxRequests).Int64()
		if err != nil {
			rl.log.Warn("rate limiter redis error, allowing request",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(maxRequests) {
			rl.log.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("count", count),
				zap.Float64("limit", rl.config.RequestsPerSecond),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded: %d requests in %d seconds (limit: %.0f req/s)",
					count, rl.config.WindowSeconds, rl.config.RequestsPerSecond),
			})
			return
		}

		c.Next()
	}
}
