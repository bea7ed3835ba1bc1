package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps JSON values in an in-process LRU backed by Redis. With a nil
// Redis client only the in-process tier is used.
type Cache struct {
	l1    *LRUCache[string, []byte]
	l2    *redis.Client
	l2TTL time.Duration
}

func NewMultiTierCache(l1Capacity int, redisClient *redis.Client, l2TTL time.Duration) *Cache {
	return &Cache{
		l1:    NewLRUCache[string, []byte](l1Capacity),
		l2:    redisClient,
		l2TTL: l2TTL,
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found := c.l1.Get(key); found {
		return val, true, nil
	}

	if c.l2 == nil {
		return nil, false, nil
	}

	val, err := c.l2.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	c.l1.Set(key, val)
	return val, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.l1.Set(key, value)
	if c.l2 == nil {
		return nil
	}
	if err := c.l2.Set(ctx, key, value, c.l2TTL).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.l1.Delete(key)
	if c.l2 == nil {
		return nil
	}
	return c.l2.Del(ctx, key).Err()
}

// GetJSON decodes a cached value into dest. A Redis failure is reported as
// a miss together with the error so callers can fall through to the store.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, found, err := c.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		// Undecodable entries are evicted so the next read repopulates them.
		if derr := c.Delete(ctx, key); derr != nil {
			return false, fmt.Errorf("failed to evict cache key %s: %w", key, derr)
		}
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}

	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}

	return c.Set(ctx, key, data)
}
