package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Cache stores raw API responses keyed by source and query, so repeated
// runs can work from cached data (use_cached_data) and operators can
// inspect what the last run saw.
type Cache interface {
	// Get returns the cached payload for key, with ok=false on a miss.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Entries lists cached keys for the cache subcommands.
	Entries(ctx context.Context) ([]CacheEntry, error)
	Clear(ctx context.Context) error
}

// CacheEntry describes one cached payload.
type CacheEntry struct {
	Key      string
	Size     int64
	Modified time.Time // zero when the backend has no mtime (redis)
}

const cacheSuffix = ".json"

// FileCache is the default Cache backend: one file per key under a
// cache directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-backed cache rooted at dir.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+cacheSuffix)
}

// Get reads a cached payload; a missing file is a miss, not an error.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes a payload, creating the cache directory on first use.
func (c *FileCache) Set(ctx context.Context, key string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir %s: %w", c.dir, err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache %s: %w", key, err)
	}
	return nil
}

// Delete removes one key; removing an absent key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache %s: %w", key, err)
	}
	return nil
}

// Entries lists cached keys sorted by key name.
func (c *FileCache) Entries(ctx context.Context) ([]CacheEntry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache dir %s: %w", c.dir, err)
	}

	var entries []CacheEntry
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cacheSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat cache file %s: %w", e.Name(), err)
		}
		entries = append(entries, CacheEntry{
			Key:      strings.TrimSuffix(e.Name(), cacheSuffix),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every cached payload.
func (c *FileCache) Clear(ctx context.Context) error {
	entries, err := c.Entries(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := c.Delete(ctx, e.Key); err != nil {
			return err
		}
	}
	return nil
}
