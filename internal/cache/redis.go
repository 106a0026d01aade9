// Package cache provides the Redis client used for rate limiting and
// read-through caching of recipes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cookbook/internal/observability"

	"github.com/redis/go-redis/v9"
)

// RecipeTTL bounds how long a cached recipe may lag behind the database.
const RecipeTTL = 5 * time.Minute

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// NewClient builds a client for addr, which is either host:port or a
// redis:// URL. The connection is not checked.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})
	return client, nil
}

// Connect returns a client for addr, or nil when Redis is unreachable. The
// server runs without caching and with fail-open rate limits in that case.
func Connect(ctx context.Context, addr string) *redis.Client {
	client, err := NewClient(addr)
	if err != nil {
		observability.Logger.Warn("Redis disabled", slog.String("error", err.Error()))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		observability.Logger.Warn("Redis unreachable, continuing without cache", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	observability.Logger.Info("Redis connected")
	return client
}

// RecipeKey is the cache key of one recipe.
func RecipeKey(id string) string {
	return "recipe:" + id
}

// Aside reads key into dest, or calls fetch to fill dest and stores the
// result for ttl. A nil client always fetches. Cache errors never fail the read.
func Aside(ctx context.Context, rdb *redis.Client, key string, dest any, ttl time.Duration, fetch func() error) error {
	if rdb != nil {
		if s, err := rdb.Get(ctx, key).Result(); err == nil {
			if json.Unmarshal([]byte(s), dest) == nil {
				return nil
			}
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if rdb != nil {
		if b, err := json.Marshal(dest); err == nil {
			_ = rdb.Set(ctx, key, b, ttl).Err()
		}
	}
	return nil
}

// Invalidate drops key. It is a no-op without a client.
func Invalidate(ctx context.Context, rdb *redis.Client, key string) {
	if rdb != nil {
		rdb.Del(ctx, key)
	}
}
