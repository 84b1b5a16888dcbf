package middleware

import (
	"net/http"
	"sync"
	"time"
)

// staleAfter is how long an idle client keeps its bucket before a
// sweep reclaims it.
const staleAfter = 10 * time.Minute

// RateLimiter throttles chat turns per client with a token bucket.
// Patients type in short bursts, so buckets stay small and refill
// continuously.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*tokenBucket
	perSecond float64
	burst     float64
	lastSweep time.Time
}

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter allows perSecond sustained requests per client key
// with the given burst headroom.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*tokenBucket),
		perSecond: perSecond,
		burst:     float64(burst),
		lastSweep: time.Now(),
	}
}

// Allow reports whether one more request from key fits the budget.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweepLocked(now)

	b, ok := rl.clients[key]
	if !ok {
		b = &tokenBucket{tokens: rl.burst}
		rl.clients[key] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * rl.perSecond
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweepLocked drops buckets idle past staleAfter. Runs inline on the
// request path, at most once per minute.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.clients {
		if now.Sub(b.lastSeen) > staleAfter {
			delete(rl.clients, key)
		}
	}
}

// RateLimit rejects requests over the configured budget with 429 Too
// Many Requests. Clients are keyed by IP, preferring X-Real-Ip set by
// chi's RealIP middleware.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(perSecond, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				key = xri
			}
			if !limiter.Allow(key) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
