package driver

import (
	"testing"

	"vic/internal/dialect"
	"vic/internal/format"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opt := format.DefaultOptions()
	key := CacheKey([32]byte{7}, dialect.Asm, opt)
	if cache.Known(key) {
		t.Fatal("empty cache reports a hit")
	}
	if err := cache.Remember(key, "a.vic", dialect.Asm, opt); err != nil {
		t.Fatal(err)
	}
	var payload DiskPayload
	ok, err := cache.Get(key, &payload)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if payload.Path != "a.vic" || payload.TabSize != 4 || !payload.Spaces {
		t.Errorf("payload = %+v", payload)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if cache.Known(key) {
		t.Error("hit after DropAll")
	}
	if err := cache.Remember(key, "a.vic", dialect.Asm, opt); err != nil {
		t.Fatalf("cache unusable after DropAll: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	key := CacheKey([32]byte{}, dialect.Bin, format.Options{})
	if cache.Known(key) {
		t.Error("nil cache hit")
	}
	if err := cache.Remember(key, "x", dialect.Bin, format.Options{}); err != nil {
		t.Error(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Error(err)
	}
}
