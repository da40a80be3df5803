// Package cache is a typed read-through wrapper around go-cache.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds values of one type under string keys
type Cache[V any] struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries expire after ttl
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get retrieves an item from the cache by its key
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	value, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := value.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.cache.Set(key, value, c.ttl)
}

func (c *Cache[V]) Delete(keys ...string) {
	for _, key := range keys {
		c.cache.Delete(key)
	}
}

func (c *Cache[V]) Flush() {
	c.cache.Flush()
}

// GetOrLoad returns the cached value or stores the result of load. Errors are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
