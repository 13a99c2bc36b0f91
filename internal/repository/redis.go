package repository

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisRateLimiter counts requests per key in fixed windows shared across
// all API instances.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}

	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}

	return count <= int64(r.limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
