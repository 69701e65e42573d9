package cache

import (
	"context"
	"sync"
	"time"

	"github.com/stockroom/backend/internal/domain"
)

// cacheItem is a single cached record with its expiration
type cacheItem struct {
	record     domain.ProductRecord
	expiration time.Time
}

// MemoryProductCache is a thread-safe in-memory cache of resolved product
// records keyed by UPC, with per-entry TTL. Records are stored by value so
// callers cannot mutate cached state through the returned pointer chain.
type MemoryProductCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryProductCache creates a new in-memory product cache
func NewMemoryProductCache() *MemoryProductCache {
	cache := &MemoryProductCache{
		data: make(map[string]cacheItem),
	}

	// Remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached record by UPC
func (c *MemoryProductCache) Get(ctx context.Context, upc string) (*domain.ProductRecord, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[upc]
	if !exists || time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	record := item.record
	return &record, nil
}

// Set stores a record with TTL
func (c *MemoryProductCache) Set(ctx context.Context, upc string, record *domain.ProductRecord, ttl time.Duration) error {
	if record == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[upc] = cacheItem{
		record:     *record,
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a record from the cache
func (c *MemoryProductCache) Delete(ctx context.Context, upc string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, upc)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryProductCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for upc, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, upc)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryProductCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
