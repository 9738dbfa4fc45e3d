// Package cache keeps short-lived copies of anonymous-safe GET responses
// (communities, actor profiles). Entries live in memory and on disk under the
// config directory, so they survive between invocations until the TTL lapses.
package cache

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/commonground/cg/pkg/config"
)

// Cache defines the interface for caching raw response bodies
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	DeletePrefix(prefix string)
	Flush()
}

// Key builds a namespaced cache key, e.g. Key("community", "general").
func Key(parts ...string) string {
	return "cg:v1:" + strings.Join(parts, ":")
}

var (
	shared   Cache
	sharedMu sync.Mutex
)

// Shared returns the process-wide cache, creating it from config on first use.
// Without a config directory it is memory only.
func Shared() Cache {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		ttl := time.Duration(config.GetInt("cache.ttl_seconds")) * time.Second
		if ttl <= 0 {
			ttl = time.Minute
		}
		if dir := config.GetConfigDir(); dir != "" {
			shared = NewLayeredCache(ttl, filepath.Join(dir, "cache"))
		} else {
			shared = NewMemoryCache(ttl, 2*ttl)
		}
	}
	return shared
}

// Reset drops the process-wide cache so the next Shared call re-reads config.
// Entries already on disk are kept.
func Reset() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}
