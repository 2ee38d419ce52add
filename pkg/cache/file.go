package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileCache stores rendered artifacts as plain files for CLI usage:
//
//	<dir>/<kind>/<hash>-<deadline><ext>
//
// The kind comes from the key's clear-text prefix, so cached diagrams land
// under svg/ with an .svg extension and cached plans under json/ — every
// entry is directly openable without the cache in between. The expiration
// deadline (unix milliseconds, 0 for none) is part of the file name, so
// lookups decode no envelope and stale entries are swept the moment they
// are touched.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir.
// The directory is created if it doesn't exist.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// extensions maps artifact kinds to the file extension entries are stored
// under.
var extensions = map[string]string{
	"svg":  ".svg",
	"json": ".json",
}

// location splits a key into the entry's directory, file-name stem, and
// extension. Keys without a usable kind prefix land under misc/.
func (c *FileCache) location(key string) (dir, stem, ext string) {
	kind, rest, found := strings.Cut(key, ":")
	if !found || !plainKind(kind) {
		kind, rest = "misc", key
	}
	sum := sha256.Sum256([]byte(rest))
	ext, ok := extensions[kind]
	if !ok {
		ext = ".bin"
	}
	return filepath.Join(c.dir, kind), hex.EncodeToString(sum[:]), ext
}

// plainKind reports whether a key prefix is safe to use as a directory name.
func plainKind(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// find locates the live entry file for a key, removing it when its deadline
// has passed.
func (c *FileCache) find(key string) (string, bool, error) {
	dir, stem, ext := c.location(key)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	prefix := stem + "-"
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		deadline, perr := strconv.ParseInt(strings.TrimSuffix(name[len(prefix):], ext), 10, 64)
		if perr != nil {
			// Not an entry of ours; leave it alone.
			continue
		}
		full := filepath.Join(dir, name)
		if deadline != 0 && time.Now().UnixMilli() > deadline {
			_ = os.Remove(full)
			continue
		}
		return full, true, nil
	}
	return "", false, nil
}

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, ok, err := c.find(key)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// Lost a race with a concurrent sweep; treat as a miss.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value, replacing any previous entry for the key.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	dir, stem, ext := c.location(key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := c.Delete(ctx, key); err != nil {
		return err
	}

	var deadline int64
	if ttl > 0 {
		deadline = time.Now().Add(ttl).UnixMilli()
	}
	name := stem + "-" + strconv.FormatInt(deadline, 10) + ext
	return os.WriteFile(filepath.Join(dir, name), data, 0644)
}

// Delete removes every entry file for the key.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	dir, stem, ext := c.location(key)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	prefix := stem + "-"
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), prefix) || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error { return nil }

var _ Cache = (*FileCache)(nil)
