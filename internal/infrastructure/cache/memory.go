package cache

import (
	"context"
	"sync"
	"time"

	"github.com/claimvalue/backend/internal/domain"
)

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      *domain.ValidationResponse
	Expiration time.Time
}

// TTLCache is a thread-safe in-memory cache with TTL support. Expiry is lazy
// (checked on read) with a periodic sweep for abandoned keys. The stored
// response is returned as-is on hit; the TTL is never refreshed by reads.
type TTLCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewTTLCache creates a new in-memory TTL cache
func NewTTLCache() *TTLCache {
	cache := &TTLCache{
		data: make(map[string]cacheItem),
	}

	// Sweep expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a value from the cache. Read-then-expire is atomic per entry:
// an expired item is never returned even if the sweeper has not run yet.
func (c *TTLCache) Get(ctx context.Context, key string) (*domain.ValidationResponse, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache with TTL. Concurrent writes to the same key
// are last-write-wins.
func (c *TTLCache) Set(ctx context.Context, key string, value *domain.ValidationResponse, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *TTLCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *TTLCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *TTLCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
