package merchantcache

import (
	"context"
	"testing"
	"time"

	"spendlens/internal/models"
)

func TestCache_GetPut(t *testing.T) {
	cache := New()

	if _, ok := cache.Get("STARBUCKS #1234"); ok {
		t.Fatalf("Expected miss on empty cache")
	}

	cache.Put("STARBUCKS #1234", models.CategoryFoodDining, 0.95)

	entry, ok := cache.Get("STARBUCKS #5678")
	if !ok {
		t.Fatalf("Expected hit for same merchant with different order id")
	}
	if entry.Category != models.CategoryFoodDining {
		t.Errorf("Expected category %s, got %s", models.CategoryFoodDining, entry.Category)
	}
	if entry.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %.2f", entry.Confidence)
	}
}

func TestCache_HitCountAndLastUsed(t *testing.T) {
	current := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	cache := New(WithClock(func() time.Time { return current }))

	cache.Put("NETFLIX.COM", models.CategoryEntertainment, 0.95)

	current = current.Add(10 * time.Minute)
	entry, ok := cache.Get("NETFLIX.COM")
	if !ok {
		t.Fatalf("Expected hit")
	}
	if entry.HitCount != 2 {
		t.Errorf("Expected hit count 2 after put and one get, got %d", entry.HitCount)
	}
	if !entry.LastUsed.Equal(current) {
		t.Errorf("Expected LastUsed refreshed to %s, got %s", current, entry.LastUsed)
	}
}

func TestCache_Stats(t *testing.T) {
	cache := New()

	cache.Put("NETFLIX.COM", models.CategoryEntertainment, 0.95)
	cache.Get("NETFLIX.COM")
	cache.Get("NETFLIX.COM")
	cache.Get("UNKNOWN MERCHANT")

	stats := cache.Stats()
	if stats.Size != 1 {
		t.Errorf("Expected size 1, got %d", stats.Size)
	}
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	wantRate := 2.0 / 3.0
	if stats.HitRate < wantRate-0.001 || stats.HitRate > wantRate+0.001 {
		t.Errorf("Expected hit rate %.3f, got %.3f", wantRate, stats.HitRate)
	}
}

func TestCache_EmptyKeyIgnored(t *testing.T) {
	cache := New()

	cache.Put("###", models.CategoryOther, 0.80)
	if cache.Len() != 0 {
		t.Errorf("Expected unkeyable description to be ignored, size %d", cache.Len())
	}

	if _, ok := cache.Get("###"); ok {
		t.Errorf("Expected miss for unkeyable description")
	}
	if stats := cache.Stats(); stats.Misses != 0 {
		t.Errorf("Unkeyable lookups should not count as misses, got %d", stats.Misses)
	}
}

func TestCache_EvictIdleEntries(t *testing.T) {
	current := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	cache := New(WithClock(func() time.Time { return current }))

	cache.Put("NETFLIX.COM", models.CategoryEntertainment, 0.95)
	cache.Put("SPOTIFY PREMIUM", models.CategoryEntertainment, 0.95)

	// Keep one entry fresh, let the other idle past the TTL.
	current = current.Add(45 * time.Minute)
	cache.Get("NETFLIX.COM")

	current = current.Add(30 * time.Minute)
	evicted := cache.Evict()

	if evicted != 1 {
		t.Errorf("Expected 1 eviction, got %d", evicted)
	}
	if _, ok := cache.Get("NETFLIX.COM"); !ok {
		t.Errorf("Recently used entry should survive the sweep")
	}
	if _, ok := cache.Get("SPOTIFY PREMIUM"); ok {
		t.Errorf("Idle entry should have been evicted")
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	cache := New()

	cache.Put("TARGET 00012345", models.CategoryShopping, 0.80)
	cache.Put("TARGET 00012345", models.CategoryGroceries, 0.95)

	entry, ok := cache.Get("TARGET 00012345")
	if !ok {
		t.Fatalf("Expected hit")
	}
	if entry.Category != models.CategoryGroceries {
		t.Errorf("Expected last write to win, got %s", entry.Category)
	}
}

func TestCache_StartStop(t *testing.T) {
	cache := New(WithSweepInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache.Start(ctx)
	cache.Put("NETFLIX.COM", models.CategoryEntertainment, 0.95)
	time.Sleep(5 * time.Millisecond)
	cache.Stop()

	// Entries are fresh, the sweep must not have removed them.
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry after sweep of fresh cache, got %d", cache.Len())
	}

	// Stop is idempotent.
	cache.Stop()
}
