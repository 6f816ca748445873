package auth

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const resetThrottleKeyPrefix = "voters-info:reset-cooldown:"

// ResetThrottle allows one password reset mail per email per cooldown window.
// Without a redis client every request is allowed.
type ResetThrottle struct {
	rdb      *redis.Client
	cooldown time.Duration
}

func NewResetThrottle(rdb *redis.Client, cooldown time.Duration) *ResetThrottle {
	return &ResetThrottle{
		rdb:      rdb,
		cooldown: cooldown,
	}
}

func (t *ResetThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if t.rdb == nil || t.cooldown <= 0 {
		return true, nil
	}

	key := resetThrottleKeyPrefix + strings.ToLower(email)
	return t.rdb.SetNX(ctx, key, 1, t.cooldown).Result()
}
