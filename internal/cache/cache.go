// Package cache provides caching for parsed type signatures.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache provides a generic caching interface.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// ComputeKey generates a cache key from content using SHA-256.
func ComputeKey(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:16]) // use first 128 bits
}

// ComputeKeyWithPrefix generates a cache key with a prefix.
func ComputeKeyWithPrefix(prefix string, content []byte) string {
	return fmt.Sprintf("%s:%s", prefix, ComputeKey(content))
}

// Entry represents a cached entry with expiration.
type Entry struct {
	Value     interface{}
	ExpiresAt time.Time
	// seq orders entries by insertion for eviction.
	seq uint64
}

// IsExpired returns true if the entry has expired. A zero ExpiresAt never
// expires.
func (e *Entry) IsExpired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// expiry converts a TTL into an absolute deadline. A zero TTL means no
// expiry.
func expiry(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
