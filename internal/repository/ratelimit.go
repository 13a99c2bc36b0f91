package repository

import "context"

// RateLimiter throttles API callers by an opaque key (user id or remote
// address). Allow reports whether the caller is within its budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
