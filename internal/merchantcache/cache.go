// Package merchantcache provides a process-wide, time-bounded memo of
// merchant-key to category classifications so repeated statements do not
// trigger redundant classifier calls. Entries are never persisted; an idle
// entry is evicted by a background sweep after a fixed TTL.
package merchantcache

import (
	"context"
	"sync"
	"time"

	"spendlens/internal/models"
	"spendlens/internal/normalize"
	"spendlens/pkg/logger"
)

const (
	// DefaultTTL is how long an entry survives without being used
	DefaultTTL = time.Hour
	// DefaultSweepInterval is how often the background sweep runs
	DefaultSweepInterval = 10 * time.Minute
)

// Entry is a cached merchant classification
type Entry struct {
	Category   models.Category
	Confidence float64
	HitCount   int
	LastUsed   time.Time
}

// Cache is a concurrency-safe merchant classification memo. Read-then-write
// races on the same merchant key are tolerated: last write wins, and the
// worst case is one redundant classifier call, never corruption.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	hits    int64
	misses  int64

	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	stop   chan struct{}
	doneWG sync.WaitGroup
	logger logger.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithTTL overrides the idle TTL
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithSweepInterval overrides the sweep interval
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) { c.sweepInterval = interval }
}

// WithClock injects a clock, used by tests to age entries without sleeping
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a merchant cache. The eviction sweep does not run until Start
// is called; lookups and inserts work either way.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]*Entry),
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		logger:        logger.GetGlobalLogger().WithComponent("merchant_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get looks up a cached classification by transaction description. A hit
// refreshes the entry's HitCount and LastUsed.
func (c *Cache) Get(description string) (*Entry, bool) {
	key := normalize.CacheKey(description)
	if key == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry.HitCount++
	entry.LastUsed = c.now()
	c.hits++

	return &Entry{
		Category:   entry.Category,
		Confidence: entry.Confidence,
		HitCount:   entry.HitCount,
		LastUsed:   entry.LastUsed,
	}, true
}

// Put stores a classification under the description's coarse merchant key
func (c *Cache) Put(description string, category models.Category, confidence float64) {
	key := normalize.CacheKey(description)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &Entry{
		Category:   category,
		Confidence: confidence,
		HitCount:   1,
		LastUsed:   c.now(),
	}
}

// Stats returns a snapshot of cache effectiveness
func (c *Cache) Stats() models.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := models.CacheStats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Evict removes every entry idle longer than the TTL and returns how many
// were removed
func (c *Cache) Evict() int {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for key, entry := range c.entries {
		if entry.LastUsed.Before(cutoff) {
			delete(c.entries, key)
			evicted++
		}
	}

	if evicted > 0 {
		c.logger.WithFields(logger.Fields{
			"evicted":   evicted,
			"remaining": len(c.entries),
		}).Debug("Swept idle merchant cache entries")
	}

	return evicted
}

// Start launches the background eviction sweep. The sweep stops when the
// context is cancelled or Stop is called.
func (c *Cache) Start(ctx context.Context) {
	c.stop = make(chan struct{})
	c.doneWG.Add(1)

	go func() {
		defer c.doneWG.Done()
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Evict()
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the background sweep and waits for it to exit
func (c *Cache) Stop() {
	if c.stop == nil {
		return
	}
	close(c.stop)
	c.doneWG.Wait()
	c.stop = nil
}
