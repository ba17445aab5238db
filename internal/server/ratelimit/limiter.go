// Package ratelimit counts calls per key in fixed windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Limiter interface {
	// Allow records one call for key and reports whether it is within the
	// limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// Nop allows everything.
type Nop struct{}

func (Nop) Allow(context.Context, string) (bool, error) { return true, nil }

// RedisLimiter keeps one counter per key. The first call of a window creates
// the counter with the window as its TTL; later calls only increment it.
type RedisLimiter struct {
	client      redis.Cmdable
	prefix      string
	maxRequests int
	window      time.Duration
}

func NewRedisLimiter(client redis.Cmdable, prefix string, maxRequests int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if maxRequests <= 0 {
		return nil, fmt.Errorf("max requests must be positive, got %d", maxRequests)
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}
	return &RedisLimiter{client: client, prefix: prefix, maxRequests: maxRequests, window: window}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key

	// MULTI/EXEC so the counter cannot expire between SET and INCR and be
	// recreated without a TTL.
	pipe := l.client.TxPipeline()
	pipe.SetNX(ctx, k, 0, l.window)
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count, err := incr.Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	return count <= int64(l.maxRequests), nil
}
