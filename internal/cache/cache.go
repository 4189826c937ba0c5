// Package cache is a content-addressed on-disk store for fetched stems.
// Entries are keyed by the BLAKE2b digest of the source URL, so the same
// stem is never downloaded twice across sessions.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

type Cache struct {
	dir string
}

// New opens (creating if needed) a cache rooted at dir.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Key derives the stable cache key for a URL.
func (c *Cache) Key(url string) string {
	sum := blake2b.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached bytes for url, if present.
func (c *Cache) Get(url string) ([]byte, bool) {
	data, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores bytes for url. The write goes through a temp file plus
// rename so a crashed process never leaves a truncated entry.
func (c *Cache) Put(url string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, "stem-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(url))
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, c.Key(url))
}
