package cache

import (
	"context"
	"sync"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

// BoundedCache is the degraded fallback store: a key→(value, insertion time)
// map with the same lazy TTL check on read and a hard entry cap. When the cap
// would be exceeded on insert, the single oldest-inserted entry is evicted.
// This is insertion-order eviction, not LRU.
type BoundedCache struct {
	data       map[string]cacheItem
	order      []string
	maxEntries int
	mutex      sync.Mutex
}

// NewBoundedCache creates a bounded fallback cache holding at most maxEntries.
func NewBoundedCache(maxEntries int) *BoundedCache {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &BoundedCache{
		data:       make(map[string]cacheItem),
		maxEntries: maxEntries,
	}
}

// Get retrieves a value, expiring it in place when its TTL has passed.
func (c *BoundedCache) Get(ctx context.Context, key string) (*domain.ValidationResponse, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		c.remove(key)
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value, evicting the oldest-inserted entry when over capacity.
func (c *BoundedCache) Set(ctx context.Context, key string, value *domain.ValidationResponse, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[key]; exists {
		// Rewrite keeps the original insertion position
		c.data[key] = cacheItem{Value: value, Expiration: time.Now().Add(ttl)}
		return nil
	}

	if len(c.data) >= c.maxEntries && len(c.order) > 0 {
		c.remove(c.order[0])
	}

	c.data[key] = cacheItem{Value: value, Expiration: time.Now().Add(ttl)}
	c.order = append(c.order, key)
	return nil
}

// Delete removes a value from the cache
func (c *BoundedCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.remove(key)
	return nil
}

// Size returns the current number of items in the cache
func (c *BoundedCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.data)
}

// remove deletes a key from both the map and the insertion-order list.
// Caller must hold the mutex.
func (c *BoundedCache) remove(key string) {
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
