package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
)

// RedisRateLimiter counts requests in redis, one key per caller and window,
// so every replica shares the same budget.
type RedisRateLimiter struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRateLimiter(rdb *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb: rdb,
		now: time.Now,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	now := l.now()
	start := windowStart(now, limit.Period)
	resetAfter := start.Add(limit.Period).Sub(now)
	windowKey := key + ":" + strconv.FormatInt(start.UnixMilli(), 10)

	var count *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, windowKey)
		pipe.PExpire(ctx, windowKey, resetAfter)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count requests in window: %w", err)
	}

	return fixedWindowResult(limit, count.Val(), resetAfter), nil
}
