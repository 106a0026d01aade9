package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

// Limiter counts requests per resource and caller in Redis. It is disabled
// for the development and test environments.
type Limiter struct {
	rdb      *redis.Client
	disabled bool
}

// NewLimiter returns a limiter for env. rdb may be nil.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "development", "test":
		return &Limiter{rdb: rdb, disabled: true}
	}
	return &Limiter{rdb: rdb}
}

// Allow reports whether one more request for resource by id fits in the window.
func (l *Limiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if l.disabled {
		return true, nil
	}
	if l.rdb == nil {
		return false, errors.New("redis client is nil")
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)
	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// RateLimit returns a Fiber middleware enforcing limit requests per window,
// keyed by the signed-in user or else the remote IP. It fails open.
func (l *Limiter) RateLimit(limit int, window time.Duration, resource string) fiber.Handler {
	return l.RateLimitWithPolicy(limit, window, FailOpen, resource)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func (l *Limiter) RateLimitWithPolicy(limit int, window time.Duration, policy FailPolicy, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			id = "user:" + uid
		}

		allowed, err := l.Allow(c.UserContext(), resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				observability.Logger.WarnContext(c.UserContext(), "rate limit unavailable",
					slog.String("resource", resource), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "rate limit unavailable",
				})
			}
			return c.Next()
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
