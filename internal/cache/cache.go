package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the engine's request-response cache. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a namespaced cache key from an arbitrary identifier
// (a URL, or a source id plus query).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "veriscope:v1:" + hex.EncodeToString(h.Sum(nil))
}
