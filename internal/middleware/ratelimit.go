package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tunepull/api/pkg/response"
)

// RateLimiter throttles anonymous clients by IP using a fixed Redis window.
// Conversions are expensive (a subprocess or a paid API call each), so the
// conversion endpoints get a much tighter budget than the page-fetch proxy.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, c.IP())
		ctx := context.Background()

		// Increment counter
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request — conversions must keep
			// working without it
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			// Get TTL for retry-after header
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		// Add rate limit headers
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// ConvertLimit returns a rate limiter for the conversion endpoints
func (rl *RateLimiter) ConvertLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("convert", maxPerMin, time.Minute)
}

// FetchLimit returns a rate limiter for the watch-page proxy
func (rl *RateLimiter) FetchLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("fetch", maxPerMin, time.Minute)
}
