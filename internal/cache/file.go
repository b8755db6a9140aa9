package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// File permission constants for cache operations.
const (
	cacheDirPerm  = 0o750 // Directory permissions: rwxr-x---
	cacheFilePerm = 0o600 // File permissions: rw-------
)

// Minimum length for creating subdirectory structure in cache keys.
const minKeyLengthForSubdir = 4

// FileCache implements Cache using file system storage so that results
// survive between runs. Values are stored as JSON; a value that marshals to
// a JSON string, such as a signature, reads back as a string.
type FileCache struct {
	baseDir string
}

// fileEntry is the on-disk format for cached values.
type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewFileCache creates a file-backed cache rooted at baseDir, creating the
// directory if needed.
func NewFileCache(baseDir string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, cacheDirPerm); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &FileCache{baseDir: baseDir}, nil
}

// Dir returns the cache root.
func (f *FileCache) Dir() string {
	return f.baseDir
}

// Get retrieves a value from the cache. Unreadable or expired entries are
// misses; expired ones are removed.
func (f *FileCache) Get(_ context.Context, key string) (any, bool) {
	path := f.keyToPath(key)

	entry, err := readEntry(path)
	if err != nil {
		return nil, false
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	var value any
	if err := json.Unmarshal(entry.Value, &value); err != nil {
		return nil, false
	}
	return value, true
}

// Set stores a value in the cache with the given TTL. Write failures are
// dropped; the cache is an optimisation.
func (f *FileCache) Set(_ context.Context, key string, value any, ttl time.Duration) {
	path := f.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(path), cacheDirPerm); err != nil {
		return
	}

	valueData, err := json.Marshal(value)
	if err != nil {
		return
	}
	data, err := json.Marshal(fileEntry{
		Value:     valueData,
		ExpiresAt: expiry(ttl),
		CreatedAt: time.Now(),
	})
	if err != nil {
		return
	}

	// Write atomically using temp file
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, cacheFilePerm); err != nil {
		return
	}
	_ = os.Rename(tempFile, path)
}

// Delete removes a value from the cache.
func (f *FileCache) Delete(_ context.Context, key string) {
	_ = os.Remove(f.keyToPath(key))
}

// Clear removes all values from the cache.
func (f *FileCache) Clear(_ context.Context) {
	_ = os.RemoveAll(f.baseDir)
	_ = os.MkdirAll(f.baseDir, cacheDirPerm)
}

// Cleanup removes expired and unreadable entries and reports how many files
// were removed.
func (f *FileCache) Cleanup() int {
	removed := 0
	now := time.Now()
	_ = filepath.WalkDir(f.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		entry, err := readEntry(path)
		if err != nil || (!entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt)) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed
}

func readEntry(path string) (fileEntry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fileEntry{}, err
	}
	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return fileEntry{}, err
	}
	return entry, nil
}

// keyToPath converts a cache key to a file path, fanning out into two
// directory levels taken from the key.
func (f *FileCache) keyToPath(key string) string {
	safeKey := sanitizeKey(key)
	// Keys carry a "prefix_" head; fan out on the hash part when present.
	fan := safeKey
	if i := strings.LastIndexByte(safeKey, '_'); i >= 0 && len(safeKey)-i-1 >= minKeyLengthForSubdir {
		fan = safeKey[i+1:]
	}
	if len(fan) >= minKeyLengthForSubdir {
		return filepath.Join(f.baseDir, fan[:2], fan[2:4], safeKey+".json")
	}
	return filepath.Join(f.baseDir, safeKey+".json")
}

// sanitizeKey makes a key safe for use as a filename.
func sanitizeKey(key string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(key)
}

var _ Cache = (*FileCache)(nil)
