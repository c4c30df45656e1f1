package cache

import (
	"context"
	"time"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

// BatchLock is the distributed lock contract the factory produces. It
// matches the application layer's expectation.
type BatchLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// NewBatchLock creates the batch lock appropriate for the deployment:
// Redis when enabled, otherwise the in-memory lock. A Redis connection
// failure falls back to in-memory with a warning rather than refusing to
// start.
func NewBatchLock(cfg config.RedisConfig, logger *zap.Logger) BatchLock {
	if !cfg.Enabled {
		logger.Info("using in-memory batch lock")
		return NewInMemoryBatchLock()
	}

	lock, err := NewRedisBatchLock(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory batch lock", zap.Error(err))
		return NewInMemoryBatchLock()
	}
	logger.Info("using Redis batch lock", zap.String("host", cfg.Host))
	return lock
}
