package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores advisory texts by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("insight cache get: %w", err)
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string, ttl time.Duration) error {
	return c.client.Set(ctx, key, text, ttl).Err()
}

func cacheKey(name string, balance int64) string {
	return fmt.Sprintf("adearn:insight:%s:%d", name, balance)
}
