// Package cache provides caching infrastructure for typesig.
//
// The cache package defines a generic Cache interface with an in-memory
// implementation, optionally bounded, and a file-backed implementation that
// persists between runs. The signature parser uses it to skip re-parsing
// inputs it has already seen.
//
// Usage:
//
//	c := cache.NewMemoryCache(cache.WithMaxEntries(1024))
//	c.Set(ctx, "key", value, time.Hour)
//	if val, ok := c.Get(ctx, "key"); ok {
//	    // use cached value
//	}
package cache
