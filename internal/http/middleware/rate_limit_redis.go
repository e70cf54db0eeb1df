package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("redis limiter has no client")

// RedisFixedWindowLimiter counts requests in fixed windows so the auth
// and API budgets hold across every salon-backend replica. Keys carry
// the window's start bucket, so a window expires by key rollover even
// if the PEXPIRE is lost.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "glowbook:rl"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix, now: time.Now}
}

// Allow increments the caller's counter for the current window and
// reports whether it is still within limit, plus how long until the
// window rolls over.
func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if l.client == nil {
		return false, window, ErrRedisUnavailable
	}
	if key == "" {
		key = "unknown"
	}
	if window <= 0 {
		window = time.Second
	}

	now := l.now()
	bucket := now.UnixMilli() / window.Milliseconds()
	storeKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	var incr *redis.IntCmd
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, storeKey)
		// Expiry is a cleanup aid; correctness comes from the bucket
		// suffix above.
		pipe.PExpire(ctx, storeKey, window)
		return nil
	})
	if err != nil {
		return false, window, err
	}

	windowEnd := time.UnixMilli((bucket + 1) * window.Milliseconds())
	retryAfter := windowEnd.Sub(now)
	if retryAfter <= 0 {
		retryAfter = window
	}
	return incr.Val() <= int64(limit), retryAfter, nil
}
