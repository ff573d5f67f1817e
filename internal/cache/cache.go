package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ppiankov/dialectica/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from an identity string
// (a generation request fingerprint, a fetched URL).
func Key(identity string) string {
	hash := sha256.Sum256([]byte(identity))
	return "dialectica:v1:" + hex.EncodeToString(hash[:])
}

// New builds a cache from configuration. Returns nil when caching is
// disabled; callers treat a nil cache as a pass-through.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir != "" {
		return NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
	}
	return NewMemoryCache(cfg.TTL, 10*time.Minute)
}

// GetJSON decodes a cached JSON value into out. A nil cache is a miss.
func GetJSON(c Cache, key string, out interface{}) bool {
	if c == nil {
		return false
	}
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON stores v as JSON. A nil cache is a no-op.
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
