package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"restaurant_chat/pkg/logger"
)

const rateLimitKeyPrefix = "support:ratelimit:"

// RateLimitRepository считает запросы по ключу в скользящем окне.
type RateLimitRepository interface {
	// Allow инкрементирует счетчик и сообщает, уложился ли ключ в лимит.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error)
}

type rateLimitRepository struct {
	rdb *redis.Client
	log logger.Logger
}

func NewRateLimitRepository(rdb *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{rdb: rdb, log: log}
}

func (r *rateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int64, error) {
	fullKey := rateLimitKeyPrefix + key

	count, err := r.rdb.Incr(ctx, fullKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.log.Error("Failed to increment rate limit", "error", err, "key", key)
		return false, 0, err
	}

	if count == 1 {
		r.rdb.Expire(ctx, fullKey, window)
	}

	return count <= int64(limit), count, nil
}
