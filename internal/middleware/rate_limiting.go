package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"

	"github.com/tauhid97k/voters-info-api/internal/telemetry/metrics"
	"github.com/tauhid97k/voters-info-api/pkg"
)

const (
	rateLimitKeyPrefix     = "voters-info:rl:"
	rateLimitExceededMsg   = "Too many requests, please try again later."
	rateLimitUnknownCaller = "unknown"
)

//go:generate mockgen -source=$GOFILE -destination=rate_limiting_mocks_test.go -package=middleware

// RequestRateLimiter counts a request of key against limit. Implementations
// use fixed windows: limit.Rate requests per limit.Period, counted from the
// start of the period the request falls in.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit applies one budget per caller address to every request. When the
// limiter itself fails the request is let through, so a limiter outage does
// not take the API down with it.
func RateLimit(
	rateLimiter RequestRateLimiter,
	limit redis_rate.Limit,
	trustedProxies pkg.TrustedProxies,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := pkg.ReadUserIP(r, trustedProxies)
			if err != nil {
				log.Debugf("rate limit: %s", err)
				caller = rateLimitUnknownCaller
			}

			res, err := rateLimiter.Allow(r.Context(), rateLimitKeyPrefix+caller, limit)
			if err != nil {
				log.Errorf("rate limit for [%s]: %s", caller, err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(limit.Rate))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(ceilSeconds(res.ResetAfter)))

			if res.Allowed > 0 {
				next.ServeHTTP(w, r)
				return
			}

			if metricsManager != nil {
				metricsManager.CounterRateLimitedRequests.Inc()
			}
			log.Debugf("rate limited request from [%s] to [%s]", caller, r.URL.Path)

			h.Set("Retry-After", strconv.Itoa(ceilSeconds(res.RetryAfter)))
			pkg.WriteMessage(w, http.StatusTooManyRequests, rateLimitExceededMsg)
		})
	}
}

func windowStart(now time.Time, period time.Duration) time.Time {
	return now.Truncate(period)
}

// fixedWindowResult describes the count-th request of a window that ends in
// resetAfter.
func fixedWindowResult(limit redis_rate.Limit, count int64, resetAfter time.Duration) *redis_rate.Result {
	if count > int64(limit.Rate) {
		return &redis_rate.Result{
			Limit:      limit,
			Allowed:    0,
			Remaining:  0,
			RetryAfter: resetAfter,
			ResetAfter: resetAfter,
		}
	}
	return &redis_rate.Result{
		Limit:      limit,
		Allowed:    1,
		Remaining:  limit.Rate - int(count),
		RetryAfter: -1,
		ResetAfter: resetAfter,
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
