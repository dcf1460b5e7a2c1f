package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the read-through store the search client puts responses in.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// Key generates a cache key from an arbitrary identifier
func Key(id string) string {
	hash := sha256.Sum256([]byte(id))
	return "argus:v1:" + hex.EncodeToString(hash[:])
}
