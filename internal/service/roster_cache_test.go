package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/org-service/internal/domain"
)

func newTestRosterCache(t *testing.T, ttl time.Duration) (*RosterCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRosterCache(client, ttl, nil), mr
}

func TestRosterCacheRoundTrip(t *testing.T) {
	cache, _ := newTestRosterCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("expected miss on empty cache")
	}

	roster := []domain.Staff{
		{ID: 42, PostStatus: domain.PostStatusEmployed, Fragment: domain.StaffFragment{Email: "jane@example.com"}, PostIDs: []int64{101}},
	}
	cache.Set(ctx, 1, roster)

	got, ok := cache.Get(ctx, 1)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 1 || got[0].ID != 42 || got[0].PostIDs[0] != 101 {
		t.Fatalf("cached roster = %+v", got)
	}

	// Another department's key is independent.
	if _, ok := cache.Get(ctx, 2); ok {
		t.Fatal("unexpected hit for different department")
	}
}

func TestRosterCacheInvalidate(t *testing.T) {
	cache, _ := newTestRosterCache(t, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, 1, []domain.Staff{{ID: 1}})
	cache.Invalidate(ctx, 1)
	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestRosterCacheExpiry(t *testing.T) {
	cache, mr := newTestRosterCache(t, time.Second)
	ctx := context.Background()

	cache.Set(ctx, 1, []domain.Staff{{ID: 1}})
	mr.FastForward(2 * time.Second)
	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("expected miss after ttl")
	}
}

func TestRosterCacheDisabled(t *testing.T) {
	cache := NewRosterCache(nil, time.Minute, nil)
	ctx := context.Background()

	cache.Set(ctx, 1, []domain.Staff{{ID: 1}})
	if _, ok := cache.Get(ctx, 1); ok {
		t.Fatal("nil client must behave as a permanent miss")
	}
	cache.Invalidate(ctx, 1)

	var nilCache *RosterCache
	nilCache.Set(ctx, 1, nil)
	if _, ok := nilCache.Get(ctx, 1); ok {
		t.Fatal("nil cache must behave as a permanent miss")
	}
}
