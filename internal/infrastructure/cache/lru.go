package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache is an in-process cache with a least recently used eviction
// policy. Every entry lives for the cache-wide ttl, so the per-call
// expiration of Set is ignored.
type LRUCache struct {
	cache *expirable.LRU[string, string]
}

// NewLRUCache keeps at most size entries. A zero ttl keeps entries until
// they are evicted.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = 1
	}

	return &LRUCache{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.cache.Add(key, value)
	return nil
}

func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.cache.Remove(key)
	return nil
}
