package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores each entry as one file in a directory, raw bytes, no
// envelope. The filename is the SHA-256 hash of the key, so arbitrary key
// strings are safe on any filesystem. Entry age comes from the file's
// modification time; there is no separate metadata to keep in sync.
//
// A FileCache is not goroutine-safe, but separate instances (even in
// different processes) can share a directory since every operation maps to
// a single atomic filesystem call.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a cache rooted at dir, creating it if needed.
// Entries older than ttl count as misses and are removed on read; a ttl of
// zero disables expiry.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value. A stale entry is deleted and reported as a miss so
// the caller regenerates and re-stores it.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	path := c.keyPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		_ = os.Remove(path)
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value, resetting the entry's age.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(key), data, 0o644)
}

// Delete removes a value.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(c.keyPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; the cache holds no open handles between calls.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) keyPath(key string) string {
	return filepath.Join(c.dir, Hash([]byte(key)))
}

var _ Cache = (*FileCache)(nil)
