package cache

import (
	"context"
	"sync"
	"time"
)

// Stats counts cache traffic since creation or the last Clear.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// MemoryCache implements Cache using in-memory storage. When a maximum size
// is set, inserting into a full cache first drops expired entries and then
// the oldest insertion.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]Entry
	maxEntries int
	seq        uint64
	stats      Stats
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithMaxEntries bounds the number of entries. Zero or less means unbounded.
func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryCache) {
		m.maxEntries = n
	}
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	m := &MemoryCache{
		items: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get retrieves a value from the cache.
func (m *MemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[key]
	if !ok || entry.IsExpired() {
		m.stats.Misses++
		return nil, false
	}

	m.stats.Hits++
	return entry.Value, true
}

// Set stores a value in the cache with the given TTL. A zero TTL keeps the
// entry until it is evicted or deleted.
func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evictLocked()
	}

	m.seq++
	m.items[key] = Entry{
		Value:     value,
		ExpiresAt: expiry(ttl),
		seq:       m.seq,
	}
}

// evictLocked makes room for one entry. m.mu must be held.
func (m *MemoryCache) evictLocked() {
	now := time.Now()
	for key, entry := range m.items {
		if !entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt) {
			delete(m.items, key)
			m.stats.Evictions++
		}
	}
	if len(m.items) < m.maxEntries {
		return
	}

	var (
		oldestKey string
		oldestSeq uint64
		found     bool
	)
	for key, entry := range m.items {
		if !found || entry.seq < oldestSeq {
			oldestKey, oldestSeq, found = key, entry.seq, true
		}
	}
	if found {
		delete(m.items, oldestKey)
		m.stats.Evictions++
	}
}

// Delete removes a value from the cache.
func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
}

// Clear removes all values from the cache and resets the statistics.
func (m *MemoryCache) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]Entry)
	m.stats = Stats{}
}

// Len returns the number of items in the cache (including expired).
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Stats returns a snapshot of the hit, miss and eviction counters.
func (m *MemoryCache) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.stats
}

// removeExpired drops expired entries.
func (m *MemoryCache) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.items {
		if entry.IsExpired() {
			delete(m.items, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
