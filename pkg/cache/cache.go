// Package cache provides a small byte-oriented cache used to avoid
// re-rendering Graphviz output for unchanged networks.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Cache stores opaque byte values under string keys. Expiry policy is fixed
// when the cache is constructed, not per entry.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, replacing any existing entry and refreshing its
	// age.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RenderKey generates the cache key for a rendered artifact: the output
// format plus the hash of the DOT source it was rendered from.
func RenderKey(format string, dot []byte) string {
	return fmt.Sprintf("render:%s:%s", format, Hash(dot))
}
