package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	redisPkg "github.com/MitulSonagara/blog-backend/pkg/redis"
)

// Cache is the subset of cache operations the post service needs.
// Get reports a miss through the found flag rather than an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache adapts the Redis client to the Cache interface
type RedisCache struct {
	client *redisPkg.Client
}

// NewRedisCache creates a new RedisCache
func NewRedisCache(client *redisPkg.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached value and whether the key was present
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set stores a value with the given TTL
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes the given keys
func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
