package http

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// rateLimiter hands each client IP a token bucket refilling limit tokens
// per window. Buckets idle for two windows are evicted.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	clients *cache.Cache
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: cache.New(2*window, 5*window),
	}
}

// allow reports whether another request from clientIP fits its bucket.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var lim *rate.Limiter
	if v, ok := rl.clients.Get(clientIP); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(rate.Every(rl.window/time.Duration(rl.limit)), rl.limit)
	}
	// refresh the idle expiry on every request
	rl.clients.SetDefault(clientIP, lim)
	return lim.AllowN(rl.now(), 1)
}

// cleanupStaleEntries evicts idle buckets and returns how many remain.
func (rl *rateLimiter) cleanupStaleEntries() int {
	rl.clients.DeleteExpired()
	return rl.clients.ItemCount()
}
