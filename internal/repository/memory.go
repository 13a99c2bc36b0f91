package repository

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter keeps a token bucket per key in process memory. Used
// standalone in single-instance deployments and as the failover target when
// Redis is unreachable.
type MemoryRateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func NewMemoryRateLimiter(rps float64, burst int) *MemoryRateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &MemoryRateLimiter{rps: rate.Limit(rps), burst: burst}
}

func (r *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	return r.limiter(key).Allow(), nil
}

func (r *MemoryRateLimiter) limiter(key string) *rate.Limiter {
	if v, ok := r.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(r.rps, r.burst)
	actual, loaded := r.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
