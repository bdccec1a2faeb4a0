package cache

import (
	"context"

	"github.com/jellydator/ttlcache/v3"

	"conferencecentral/internal/domain"
)

// MemoryCache is the in-process Cache used when no Redis URL is configured.
// It is not shared between replicas.
type MemoryCache struct {
	items *ttlcache.Cache[string, string]
}

func NewMemory() *MemoryCache {
	return &MemoryCache{
		items: ttlcache.New[string, string](ttlcache.WithDisableTouchOnHit[string, string]()),
	}
}

var _ domain.Cache = (*MemoryCache)(nil)

func (c *MemoryCache) Get(ctx context.Context, key string) (string, error) {
	item := c.items.Get(key)
	if item == nil {
		return "", nil
	}
	return item.Value(), nil
}

func (c *MemoryCache) Set(ctx context.Context, key, value string) error {
	c.items.Set(key, value, ttlcache.NoTTL)
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Health(ctx context.Context) error {
	return nil
}

func (c *MemoryCache) Close() error {
	c.items.DeleteAll()
	return nil
}
