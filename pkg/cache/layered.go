package cache

import "time"

// LayeredCache checks memory first, then disk
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a memory cache over a disk cache in dir, both with ttl
func NewLayeredCache(ttl time.Duration, dir string) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(ttl, 2*ttl),
		disk:   NewDiskCache(dir, ttl),
	}
}

// Get retrieves a value, promoting disk hits to memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(key string, value []byte) {
	c.memory.Set(key, value)
	c.disk.Set(key, value)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) {
	c.memory.Delete(key)
	c.disk.Delete(key)
}

// DeletePrefix removes matching keys from both layers
func (c *LayeredCache) DeletePrefix(prefix string) {
	c.memory.DeletePrefix(prefix)
	c.disk.DeletePrefix(prefix)
}

// Flush empties both layers
func (c *LayeredCache) Flush() {
	c.memory.Flush()
	c.disk.Flush()
}
