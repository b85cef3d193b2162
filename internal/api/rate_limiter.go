package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter entries idle for longer than limiterIdleTTL are dropped by the sweep.
const (
	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 3 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per API key, or per client address when
// the request carries no key.
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.Mutex

	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second per key.
func NewRateLimiter(rps, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.limiters[key]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = rl.now()
	return e.limiter
}

// Allow reports whether a request for key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Sweep drops keys not seen for idle and returns how many were removed.
func (rl *RateLimiter) Sweep(idle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	removed := 0
	for key, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle keys every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep(idle)
		}
	}
}

// RateLimitMiddleware rejects requests over the limit with 429.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get("x-api-key"))
			if key == "" {
				key = clientIP(r)
			}

			if !rl.Allow(key) {
				respondError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
