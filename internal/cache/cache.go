// Package cache stores JSON-encoded values in Redis with a TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Cache interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, prefix string) error
}

type redisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Save(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("failed to marshal cache value", "key", key, "error", err)
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Error("failed to set cache", "key", key, "error", err)
		return fmt.Errorf("failed to set cache value: %w", err)
	}

	logger.Debug("cache saved", "key", key, "ttl", ttl.String())
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Error("failed to unmarshal cache value", "key", key, "error", err)
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Error("failed to delete cache", "key", key, "error", err)
		return fmt.Errorf("failed to delete cache value: %w", err)
	}
	return nil
}

// Clear removes every key starting with prefix.
func (c *redisCache) Clear(ctx context.Context, prefix string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Error("failed to clear cache", "prefix", prefix, "error", err)
		return fmt.Errorf("failed to delete cache values: %w", err)
	}
	return nil
}

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) Save(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Get(context.Context, string, any) error                 { return ErrMiss }
func (Nop) Delete(context.Context, string) error                   { return nil }
func (Nop) Clear(context.Context, string) error                    { return nil }
