package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "dashboard")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}

	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return Summary{TotalUsers: 12, ActiveUsers: 9}, nil
	}

	var first Summary
	if err := cache.FetchJSON(ctx, key, &first, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var second Summary
	if err := cache.FetchJSON(ctx, key, &second, loader); err != nil {
		t.Fatalf("fetch again: %v", err)
	}

	if loads != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}
	if second.TotalUsers != 12 || second.ActiveUsers != 9 {
		t.Fatalf("cached value mismatch: %+v", second)
	}
}

func TestCacheBumpOrphansOldKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, "analytics", "dashboard")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump: %v", err)
	}
	after, err := cache.BuildKey(ctx, "analytics", "dashboard")
	if err != nil {
		t.Fatalf("build key after bump: %v", err)
	}
	if before == after {
		t.Fatalf("bump must change the derived key, both %q", before)
	}
}

func TestCacheNilClientPassThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "dashboard")
	if err != nil {
		t.Fatalf("build key: %v", err)
	}

	loads := 0
	var out Summary
	loader := func(ctx context.Context) (any, error) {
		loads++
		return Summary{TotalUsers: 3}, nil
	}
	if err := cache.FetchJSON(ctx, key, &out, loader); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := cache.FetchJSON(ctx, key, &out, loader); err != nil {
		t.Fatalf("fetch again: %v", err)
	}
	if loads != 2 {
		t.Fatalf("pass-through must load every time, got %d", loads)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump on nil cache: %v", err)
	}
}

func TestCacheLoaderErrorPropagates(t *testing.T) {
	cache := newTestCache(t)
	wantErr := errors.New("query failed")
	var out Summary
	err := cache.FetchJSON(context.Background(), "k", &out, func(ctx context.Context) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
}
