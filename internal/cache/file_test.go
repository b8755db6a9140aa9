package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestFileCache(t *testing.T) *FileCache {
	t.Helper()
	fc, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	return fc
}

func TestFileCacheBasic(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	key := ComputeKeyWithPrefix("sig", []byte("ARRAY(INT)"))
	fc.Set(ctx, key, "array(integer)", time.Hour)

	got, ok := fc.Get(ctx, key)
	if !ok {
		t.Fatal("expected cache hit, got miss")
	}
	if got != "array(integer)" {
		t.Errorf("Get() = %v, want %q", got, "array(integer)")
	}
}

func TestFileCacheMiss(t *testing.T) {
	fc := newTestFileCache(t)

	if _, ok := fc.Get(context.Background(), "non-existent"); ok {
		t.Error("expected cache miss, got hit")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	fc.Set(ctx, "expired-key", "bigint", -time.Second)

	if _, ok := fc.Get(ctx, "expired-key"); ok {
		t.Error("expected cache miss for an expired entry")
	}
	if _, err := os.Stat(fc.keyToPath("expired-key")); !os.IsNotExist(err) {
		t.Errorf("expired entry file still present: %v", err)
	}
}

func TestFileCacheZeroTTL(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	fc.Set(ctx, "forever", "bigint", 0)
	if _, ok := fc.Get(ctx, "forever"); !ok {
		t.Error("expected zero-ttl entry to be kept")
	}
}

func TestFileCacheDelete(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	fc.Set(ctx, "delete-key", "bigint", time.Hour)
	if _, ok := fc.Get(ctx, "delete-key"); !ok {
		t.Fatal("expected cache hit before delete")
	}

	fc.Delete(ctx, "delete-key")

	if _, ok := fc.Get(ctx, "delete-key"); ok {
		t.Error("expected cache miss after delete")
	}
}

func TestFileCacheClear(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	fc.Set(ctx, "key1", "a", time.Hour)
	fc.Set(ctx, "key2", "b", time.Hour)

	fc.Clear(ctx)

	for _, key := range []string{"key1", "key2"} {
		if _, ok := fc.Get(ctx, key); ok {
			t.Errorf("expected %s to be cleared", key)
		}
	}
	if _, err := os.Stat(fc.Dir()); err != nil {
		t.Errorf("cache directory missing after Clear: %v", err)
	}
}

func TestFileCacheCleanup(t *testing.T) {
	fc := newTestFileCache(t)
	ctx := context.Background()

	fc.Set(ctx, "live", "a", time.Hour)
	fc.Set(ctx, "dead", "b", -time.Second)

	corrupt := filepath.Join(fc.Dir(), "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := fc.Cleanup(); got != 2 {
		t.Errorf("Cleanup() = %d, want 2", got)
	}
	if _, ok := fc.Get(ctx, "live"); !ok {
		t.Error("expected live entry to survive cleanup")
	}
}

func TestFileCacheKeySanitization(t *testing.T) {
	fc := newTestFileCache(t)

	path := fc.keyToPath(`sig:a/b\c*d?e"f<g>h|i`)
	base := filepath.Base(path)
	if strings.ContainsAny(base, `/\:*?"<>|`) {
		t.Errorf("keyToPath() = %q contains unsafe characters", base)
	}
	if !strings.HasSuffix(base, ".json") {
		t.Errorf("keyToPath() = %q, want .json suffix", base)
	}
}

func TestFileCacheDirectoryStructure(t *testing.T) {
	fc := newTestFileCache(t)

	key := ComputeKeyWithPrefix("sig", []byte("bigint"))
	hash := strings.TrimPrefix(key, "sig:")
	path := fc.keyToPath(key)

	want := filepath.Join(fc.Dir(), hash[:2], hash[2:4], "sig_"+hash+".json")
	if path != want {
		t.Errorf("keyToPath() = %q, want %q", path, want)
	}
}

func TestNewFileCacheCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	if _, err := NewFileCache(dir); err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("expected %s to be a directory: %v", dir, err)
	}
}
