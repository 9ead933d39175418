package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGetRoundtrip(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}
	if err := mc.Set(ctx, "k", payload{Name: "a", Score: 1.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "a" || got.Score != 1.5 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestMemoryMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); err != ErrCacheMiss {
		t.Fatalf("expected miss, got %v", err)
	}

	if err := mc.Set(ctx, "short", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if err := mc.Get(ctx, "short", &s); err != ErrCacheMiss {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryDeleteAndExists(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", time.Minute)
	_ = mc.Set(ctx, "b", "2", time.Minute)

	ok, err := mc.Exists(ctx, "a", "b")
	if err != nil || !ok {
		t.Fatalf("expected both keys present, got %v / %v", ok, err)
	}

	if err := mc.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, _ = mc.Exists(ctx, "a", "b")
	if ok {
		t.Fatal("deleted key still reported present")
	}
}

func TestMemoryEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "old", "1", time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "new", "2", time.Minute)
	time.Sleep(2 * time.Millisecond)
	_ = mc.Set(ctx, "newer", "3", time.Minute)

	var s string
	if err := mc.Get(ctx, "old", &s); err != ErrCacheMiss {
		t.Fatalf("oldest entry should have been evicted, got %v", err)
	}
	if err := mc.Get(ctx, "newer", &s); err != nil {
		t.Fatalf("newest entry must survive: %v", err)
	}
}
