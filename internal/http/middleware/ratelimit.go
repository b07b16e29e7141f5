package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	// Clients idle this long are forgotten; their next request starts a
	// fresh bucket at full burst, which is the same as never having seen
	// them.
	clientIdleEviction = 10 * time.Minute
	evictSweepInterval = 5 * time.Minute
)

// RateLimiter throttles callers by key with a token bucket per key. Buckets
// refill continuously at the configured rate and cap at the burst size.
type RateLimiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientBucket
	nextSweep time.Time
}

type clientBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows rate requests per second per key with bursts up to
// burst.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
		clients: make(map[string]*clientBucket),
	}
}

// Allow reports whether a request for key fits the budget, spending one token
// when it does.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.maybeSweep(now)

	b, ok := rl.clients[key]
	if !ok {
		b = &clientBucket{tokens: rl.burst}
		rl.clients[key] = b
	} else {
		b.tokens += now.Sub(b.seen).Seconds() * rl.rate
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// maybeSweep evicts idle buckets. Piggybacked on Allow so the limiter needs
// no background goroutine; called with the lock held.
func (rl *RateLimiter) maybeSweep(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	rl.nextSweep = now.Add(evictSweepInterval)
	cutoff := now.Add(-clientIdleEviction)
	for key, b := range rl.clients {
		if b.seen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit throttles requests per client IP, answering 429 once the budget
// is spent. It keys on X-Real-Ip when chi's RealIP middleware has set it.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
