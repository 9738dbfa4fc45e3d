package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/commonground/cg/pkg/logger"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DiskCache keeps one file per key under dir
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a new disk cache
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type diskEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value from the disk cache. Expired entries are removed.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	entry, ok := readEntry(path)
	if !ok || entry.Key != key {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value for the cache's TTL
func (c *DiskCache) Set(key string, value []byte) {
	data, err := json.Marshal(diskEntry{
		Key:       key,
		Data:      value,
		ExpiresAt: time.Now().Add(c.ttl),
	})
	if err != nil {
		logger.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		logger.Warn("Failed to create cache dir", "dir", c.dir, "error", err)
		return
	}

	if err := os.WriteFile(c.path(key), data, 0600); err != nil {
		logger.Warn("Failed to write cache entry", "key", key, "error", err)
	}
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove cache entry", "key", key, "error", err)
	}
}

// DeletePrefix removes every entry whose key starts with prefix
func (c *DiskCache) DeletePrefix(prefix string) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}

	for _, f := range files {
		path := filepath.Join(c.dir, f.Name())
		if entry, ok := readEntry(path); ok && strings.HasPrefix(entry.Key, prefix) {
			_ = os.Remove(path)
		}
	}
}

// Flush removes all cached files
func (c *DiskCache) Flush() {
	if err := os.RemoveAll(c.dir); err != nil {
		logger.Warn("Failed to clear cache dir", "dir", c.dir, "error", err)
	}
}

// path names the file after a hash of key; keys contain ':' and handles
func (c *DiskCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".cache")
}

func readEntry(path string) (diskEntry, bool) {
	var entry diskEntry

	data, err := os.ReadFile(path)
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, false
	}
	return entry, true
}
