package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"go-inventory-cloud/internal/model"
)

// listTTL bounds staleness for lists mutated by other users or tabs; within
// one session the key is invalidated explicitly on every mutation.
const listTTL = 5 * time.Minute

// RedisCache is a Redis-backed ListCache storing lists as JSON.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.InventoryItem, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var items []model.InventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// Unreadable entry: drop it and refetch from the store.
		c.client.Del(ctx, key)
		return nil, false
	}
	return items, true
}

func (c *RedisCache) Set(ctx context.Context, key string, items []model.InventoryItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, listTTL)
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	c.client.Del(ctx, key)
}

// Ping verifies connectivity at startup.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
