package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const flagKeyPrefix = "safesignal:flag:"

// RedisFlags keeps flags in Redis so they survive a wiped local profile.
type RedisFlags struct {
	client *redis.Client
}

// NewRedisFlags connects to the Redis instance at redisURL
// (e.g. redis://localhost:6379/0) and verifies it responds.
func NewRedisFlags(ctx context.Context, redisURL string) (*RedisFlags, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisFlags{client: client}, nil
}

// GetFlag reports whether key is set.
func (r *RedisFlags) GetFlag(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, flagKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("reading flag %s: %w", key, err)
	}
	return n > 0, nil
}

// SetFlag marks key as set.
func (r *RedisFlags) SetFlag(ctx context.Context, key string) error {
	err := r.client.Set(ctx, flagKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), 0).Err()
	if err != nil {
		return fmt.Errorf("setting flag %s: %w", key, err)
	}
	return nil
}

// ClearFlag removes key.
func (r *RedisFlags) ClearFlag(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, flagKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clearing flag %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisFlags) Close() error {
	return r.client.Close()
}
