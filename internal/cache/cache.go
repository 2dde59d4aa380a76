// Package cache stores embedding vectors keyed by content hash so category
// prototypes and repeated document text embed once per model.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the embedding model name and the text
// content. The model is part of the key: vectors from different models are
// not comparable.
func Key(model, text string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + text))
	return "sentinel:v1:" + hex.EncodeToString(hash[:])
}
