package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

// keyPrefix namespaces vlansync cache entries inside a shared redis.
const keyPrefix = "vlansync:cache:"

// RedisCache is the redis-backed Cache, for deployments where several
// runners share one cache instead of per-host cache directories.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects a cache to the given redis address and DB.
func NewRedisCache(addr string, db int) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
	}
}

// Get returns the cached payload; redis.Nil maps to a plain miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores a payload with no expiry; Clear or the next sync replaces it.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes one key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Entries lists cached keys. Redis keeps no modification time, so
// Modified stays zero.
func (c *RedisCache) Entries(ctx context.Context) ([]CacheEntry, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]CacheEntry, 0, len(keys))
	for _, key := range keys {
		size, err := c.client.StrLen(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis strlen %s: %w", key, err)
		}
		entries = append(entries, CacheEntry{
			Key:  key[len(keyPrefix):],
			Size: size,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every vlansync cache key.
func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis clear: %w", err)
	}
	return nil
}

func (c *RedisCache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}
