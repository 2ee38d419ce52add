package cache

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// conformance runs the behavior every storing backend must satisfy.
func conformance(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	// Miss before set.
	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit=%v err=%v", hit, err)
	}

	// Round-trip.
	if err := c.Set(ctx, "k", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get(k) = %q hit=%v err=%v", data, hit, err)
	}

	// Expired entries are misses.
	if err := c.Set(ctx, "expired", []byte("x"), time.Millisecond); err != nil {
		t.Fatalf("Set(expired): %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "expired"); hit {
		t.Error("expired entry should be a miss")
	}

	// Delete is idempotent.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should be a miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("double delete: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	conformance(t, c)
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	conformance(t, c)
}

func TestFileCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c1, _ := NewFileCache(dir)
	if err := c1.Set(ctx, "persist", []byte("data"), time.Hour); err != nil {
		t.Fatal(err)
	}
	c1.Close()

	c2, _ := NewFileCache(dir)
	defer c2.Close()
	data, hit, err := c2.Get(ctx, "persist")
	if err != nil || !hit || string(data) != "data" {
		t.Fatalf("reopened Get = %q hit=%v err=%v", data, hit, err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestRenderKey(t *testing.T) {
	base := RenderKey{Kind: "json", Query: "w=800&h=600", SourceW: 1000, SourceH: 500}

	if base.String() != base.String() {
		t.Error("identical inputs must produce identical keys")
	}
	if !strings.HasPrefix(base.String(), "json:") {
		t.Errorf("key = %q, want clear-text kind prefix", base.String())
	}

	variants := []RenderKey{
		{Kind: "svg", Query: base.Query, SourceW: 1000, SourceH: 500},
		{Kind: "json", Query: "w=801&h=600", SourceW: 1000, SourceH: 500},
		{Kind: "json", Query: base.Query, SourceW: 1001, SourceH: 500},
		{Kind: "json", Query: base.Query, SourceW: 1000, SourceH: 500, EXIF: 6},
		{Kind: "json", Query: base.Query, SourceW: 1000, SourceH: 500, Variant: "sub=4:2:0"},
	}
	for i, v := range variants {
		if v.String() == base.String() {
			t.Errorf("variant %d collides with base key", i)
		}
	}
}

// Entries land under a per-kind directory with the artifact's natural
// extension, so a cached diagram is directly openable.
func TestFileCacheArtifactLayout(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	key := RenderKey{Kind: "svg", Query: "w=800", SourceW: 1000, SourceH: 500}.String()
	if err := c.Set(ctx, key, []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "svg", "*.svg"))
	if len(matches) != 1 {
		t.Fatalf("svg entries = %v, want exactly one", matches)
	}

	// Re-setting the key replaces the entry instead of accumulating files.
	if err := c.Set(ctx, key, []byte("<svg>v2</svg>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	matches, _ = filepath.Glob(filepath.Join(dir, "svg", "*.svg"))
	if len(matches) != 1 {
		t.Fatalf("after replace: svg entries = %v", matches)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "<svg>v2</svg>" {
		t.Fatalf("Get = %q hit=%v err=%v", data, hit, err)
	}

	// Keys without a kind prefix fall back to misc/.
	if err := c.Set(ctx, "bare-key", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	matches, _ = filepath.Glob(filepath.Join(dir, "misc", "*.bin"))
	if len(matches) != 1 {
		t.Fatalf("misc entries = %v", matches)
	}
}
