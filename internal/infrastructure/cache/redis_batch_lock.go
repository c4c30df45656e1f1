package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisBatchLock serializes reading batches across instances using Redis.
// This is the production lock for distributed deployments where two staff
// members may submit the same building's readings at the same time.
type RedisBatchLock struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisBatchLock creates a Redis-backed batch lock
func NewRedisBatchLock(cfg config.RedisConfig) (*RedisBatchLock, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBatchLock{
		client:    client,
		keyPrefix: "lock:",
	}, nil
}

// NewRedisBatchLockWithClient creates a lock with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisBatchLockWithClient(client *redis.Client, keyPrefix string) *RedisBatchLock {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisBatchLock{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the lock with a TTL in one atomic SETNX. Returns false when
// another holder has it.
func (l *RedisBatchLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Release drops the lock. Releasing a lock that already expired is not an
// error.
func (l *RedisBatchLock) Release(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client
func (l *RedisBatchLock) Close() error {
	return l.client.Close()
}
