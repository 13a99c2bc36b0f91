package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverRateLimiter serves from the primary limiter until it errors, then
// falls back and periodically probes the primary for recovery.
type FailoverRateLimiter struct {
	primary   RateLimiter
	fallback  RateLimiter
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed probe
}

func NewFailoverRateLimiter(primary, fallback RateLimiter, logger *zerolog.Logger) *FailoverRateLimiter {
	return &FailoverRateLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.Allow(ctx, key)
		if err == nil {
			return allowed, nil
		}
		r.logger.Error().Err(err).Msg("primary rate limiter failed, falling back to memory")
		r.isDown.Store(true)
		r.lastCheck.Store(time.Now().UnixNano())
	}

	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval {
		allowed, err := r.primary.Allow(ctx, key)
		if err == nil {
			r.logger.Info().Msg("primary rate limiter recovered")
			r.isDown.Store(false)
			return allowed, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.Allow(ctx, key)
}
