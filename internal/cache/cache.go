// Package cache holds the fetched inventory list keyed by (organization,
// user). Mutations invalidate the key rather than patching the cached value
// in place, so readers never observe a partially applied update.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-inventory-cloud/internal/model"
)

// ListCache is the inventory list cache used by the inventory service.
type ListCache interface {
	Get(ctx context.Context, key string) ([]model.InventoryItem, bool)
	Set(ctx context.Context, key string, items []model.InventoryItem)
	Invalidate(ctx context.Context, key string)
}

// ListKey builds the cache key for one organization/user pair.
func ListKey(orgID, userID uuid.UUID) string {
	return fmt.Sprintf("items:%s:%s", orgID, userID)
}

// MemoryCache is an in-process ListCache. Used in tests and in deployments
// without a Redis address configured.
type MemoryCache struct {
	m sync.Map
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]model.InventoryItem, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	items, ok := v.([]model.InventoryItem)
	return items, ok
}

func (c *MemoryCache) Set(_ context.Context, key string, items []model.InventoryItem) {
	c.m.Store(key, items)
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.m.Delete(key)
}
