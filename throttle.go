package seam

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimiter.
type RateLimitConfig struct {
	Rate            float64                   // requests per second
	Burst           int                       // max burst
	KeyFunc         func(req *Request) string // default: remote IP
	CleanupInterval time.Duration             // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration             // remove limiters idle longer than this (default: 5m)
}

// RateLimiter keeps one token bucket per client key. It is safe for
// concurrent use and is shared with the Throttle guard through Provide.
type RateLimiter struct {
	cfg RateLimitConfig

	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns a limiter for cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(req *Request) string {
			host, _, err := net.SplitHostPort(req.RemoteAddr)
			if err != nil {
				return req.RemoteAddr
			}
			return host
		}
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}
	return &RateLimiter{cfg: cfg, limiters: make(map[string]*limiterEntry)}
}

// Allow reports whether a request for key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := time.Now()

	// Lazy cleanup of expired limiters.
	if now.Sub(l.lastCleanup) >= l.cfg.CleanupInterval {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.cfg.MaxIdle {
				delete(l.limiters, k)
			}
		}
		l.lastCleanup = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst),
		}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Throttle is a guard that rejects clients exceeding the provided
// *RateLimiter with 429.
type Throttle struct {
	Key string
}

// ResolveParam implements Param.
func (t *Throttle) ResolveParam(_ context.Context, req *Request) error {
	l, ok := Lookup[*RateLimiter](req)
	if !ok || l == nil {
		return ServerError("no *seam.RateLimiter provided for Throttle")
	}
	key := l.cfg.KeyFunc(req)
	if !l.Allow(key) {
		retryAfter := "1"
		if l.cfg.Rate > 0 {
			retryAfter = strconv.FormatFloat(max(1, 1/l.cfg.Rate), 'f', 0, 64)
		}
		return Errorf(http.StatusTooManyRequests, "rate limit exceeded for %q", key).
			WithExternalMessage("Too many requests").
			WithValue(map[string]string{"retry_after": retryAfter})
	}
	t.Key = key
	return nil
}
