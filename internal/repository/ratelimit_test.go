package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisRateLimiter(t *testing.T) {
	mr, client := newMiniredisClient(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Independent keys have independent budgets.
	allowed, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window expires and the budget resets.
	mr.FastForward(2 * time.Minute)
	allowed, err = limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryRateLimiter(t *testing.T) {
	limiter := NewMemoryRateLimiter(0.0001, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (s *stubLimiter) Allow(context.Context, string) (bool, error) {
	s.calls++
	return s.allowed, s.err
}

func TestFailoverRateLimiter(t *testing.T) {
	logger := zerolog.Nop()
	primary := &stubLimiter{err: errors.New("connection refused")}
	fallback := &stubLimiter{allowed: true}
	limiter := NewFailoverRateLimiter(primary, fallback, &logger)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, fallback.calls)

	// While the primary is marked down it is not probed again immediately.
	_, err = limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, fallback.calls)
}

func TestFailoverRateLimiter_PrimaryHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := &stubLimiter{allowed: true}
	fallback := &stubLimiter{allowed: true}
	limiter := NewFailoverRateLimiter(primary, fallback, &logger)

	allowed, err := limiter.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, fallback.calls)
}

func TestRedisClientPing(t *testing.T) {
	_, client := newMiniredisClient(t)
	assert.NoError(t, Ping(context.Background(), client))
}
