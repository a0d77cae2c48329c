package session

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache[string](10)

	cache.Set("a", "one", time.Minute)
	got, ok := cache.Get("a")
	if !ok || got != "one" {
		t.Fatalf("expected hit with %q, got %q ok=%v", "one", got, ok)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache[int](10)

	cache.Set("a", 1, 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCacheNonPositiveTTLIsNoop(t *testing.T) {
	cache := NewCache[int](10)

	cache.Set("a", 1, 0)
	cache.Set("b", 2, -time.Second)

	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestCacheEvictsClosestToExpiryAtCapacity(t *testing.T) {
	cache := NewCache[int](2)

	cache.Set("soon", 1, time.Minute)
	cache.Set("later", 2, 2*time.Minute)
	cache.Set("latest", 3, 3*time.Minute)

	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", cache.Len())
	}
	if _, ok := cache.Get("soon"); ok {
		t.Fatal("expected entry closest to expiry to be evicted")
	}
	if _, ok := cache.Get("later"); !ok {
		t.Fatal("expected later entry to survive")
	}
	if _, ok := cache.Get("latest"); !ok {
		t.Fatal("expected latest entry to survive")
	}
}

func TestCacheDelete(t *testing.T) {
	cache := NewCache[string](10)

	cache.Set("a", "one", time.Minute)
	cache.Delete("a")

	if _, ok := cache.Get("a"); ok {
		t.Fatal("expected entry to be deleted")
	}
}
