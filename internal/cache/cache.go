// Package cache stores PubMed lookups and citation-check results so
// repeated verifications of the same herb-condition pairs stay offline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/servvia/trust/internal/model"
)

// Cache is the storage contract shared by the memory, disk, and layered
// implementations
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from its parts. Parts are hashed so
// arbitrary query strings stay filesystem-safe.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "servvia:v1:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the cache the config asks for: a layered
// memory-plus-disk cache when enabled, nil when disabled. Callers treat a
// nil cache as "don't cache".
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}

	dir := cfg.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = filepath.Join(home, ".servvia", "cache")
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}

	return NewLayeredCache(ttl, dir, ttl)
}
