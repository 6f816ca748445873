package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v9"
)

const localLimiterSweepSize = 10_000

type localWindow struct {
	start time.Time
	count int64
}

// LocalRateLimiter is an in-process RequestRateLimiter, used when redis is not
// available. Budgets are per process, not shared across replicas.
type LocalRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*localWindow
	now     func() time.Time
}

func NewLocalRateLimiter() *LocalRateLimiter {
	return &LocalRateLimiter{
		windows: make(map[string]*localWindow),
		now:     time.Now,
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	start := windowStart(now, limit.Period)
	if len(l.windows) >= localLimiterSweepSize {
		l.sweep(start)
	}

	window, ok := l.windows[key]
	if !ok || !window.start.Equal(start) {
		window = &localWindow{start: start}
		l.windows[key] = window
	}
	window.count++

	return fixedWindowResult(limit, window.count, start.Add(limit.Period).Sub(now)), nil
}

// sweep drops the counters of windows that ended before current.
func (l *LocalRateLimiter) sweep(current time.Time) {
	for key, window := range l.windows {
		if window.start.Before(current) {
			delete(l.windows, key)
		}
	}
}
