package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/infra/memory"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func TestActivityTrackerSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	tracker := NewActivityTracker(newClient(mr), time.Minute)

	if err := tracker.Touch(ctx, "s1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if !mr.Exists("quiz:activity:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:activity:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	if err := tracker.Clear(ctx, "s1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("quiz:activity:s1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestActivityTrackerExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	tracker := NewActivityTracker(newClient(mr), time.Minute)
	_ = tracker.Touch(ctx, "live")
	_ = tracker.Touch(ctx, "idle")
	mr.FastForward(30 * time.Second)
	_ = tracker.Touch(ctx, "live")
	mr.FastForward(45 * time.Second)

	active, err := tracker.Active(ctx, []string{"live", "idle", "never"})
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if !active["live"] || active["idle"] || active["never"] {
		t.Fatalf("unexpected activity %+v", active)
	}
}

func TestActivityTrackerReportsOutage(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	if _, err := NewActivityTracker(client, time.Minute).Active(context.Background(), []string{"s1"}); err == nil {
		t.Fatalf("expected error with redis down")
	}
}

type countingLoader struct {
	memory.CatalogLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.CatalogLoader.LoadCatalog(ctx)
}

func TestCatalogCacheStoresInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{CatalogLoader: memory.StaticCatalogLoader{}}
	cache := NewCatalogCache(newClient(mr), loader, time.Minute)

	qs, err := cache.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(qs) != 10 || loader.calls != 1 {
		t.Fatalf("expected 10 questions from one load, got %d/%d", len(qs), loader.calls)
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected catalog hash in redis")
	}

	// Second call should hit cache, loader not incremented.
	again, err := cache.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("load catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	want := domain.Catalog()
	for i := range want {
		if again[i].ID != want[i].ID || again[i].Text != want[i].Text || len(again[i].NoReasons) != len(want[i].NoReasons) {
			t.Fatalf("cached question %d differs: %+v", i, again[i])
		}
	}
}

func TestCatalogCacheReplacesStaleHash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	ctx := context.Background()
	cache := NewCatalogCache(client, memory.StaticCatalogLoader{}, time.Minute)

	if _, err := cache.LoadCatalog(ctx); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if mr.Exists(catalogKey) {
		t.Fatalf("expected catalog hash to expire")
	}

	qs, err := cache.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("reload catalog: %v", err)
	}
	n, err := client.HLen(ctx, catalogKey).Result()
	if err != nil {
		t.Fatalf("hlen: %v", err)
	}
	if int(n) != len(qs) || len(qs) != len(domain.Catalog()) {
		t.Fatalf("expected a complete hash, got %d fields for %d questions", n, len(qs))
	}
	if ttl := mr.TTL(catalogKey); ttl <= 0 {
		t.Fatalf("expected expiry on the rewritten hash, got %v", ttl)
	}
}
