// Package infra provides shared infrastructure components used across the
// application: TTL caching and rate limiting.
package infra

import (
	"context"
	"sync"
	"time"
)

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a simple thread-safe in-memory cache with TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a new cache with the given default TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewCacheWithClock creates a cache whose expiry checks use the given clock.
func NewCacheWithClock(ttl time.Duration, now func() time.Time) *Cache {
	c := NewCache(ttl)
	c.now = now
	return c
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Cleanup removes expired entries. Can be called periodically.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	now := c.now()
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// --- Token-bucket rate limiter ---

// RateLimiter provides simple token-bucket rate limiting, used for upstream
// APIs that allow short bursts up to a requests-per-interval cap.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a rate limiter that allows maxTokens requests per
// refillRate duration.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(maxTokens, refillRate, time.Now, sleepCtx)
}

// NewRateLimiterWithClock creates a rate limiter with an injected clock and
// sleeper so tests can run without real delays.
func NewRateLimiterWithClock(maxTokens int, refillRate time.Duration, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
		sleep:      sleep,
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refill()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		rl.mu.Unlock()

		// Check again after a short sleep.
		if err := rl.sleep(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with mu held.
func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed >= rl.refillRate {
		periods := int(elapsed / rl.refillRate)
		rl.tokens += periods
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(periods) * rl.refillRate)
	}
}

// --- Per-source interval limiter ---

// SourceLimiter enforces a minimum interval between requests to the same
// named source. Each source is limited independently; different sources
// never wait on each other.
type SourceLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewSourceLimiter creates a limiter with the given minimum inter-request
// interval per source.
func NewSourceLimiter(interval time.Duration) *SourceLimiter {
	return &SourceLimiter{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// NewSourceLimiterWithClock creates a limiter with an injected clock and
// sleeper so tests can run without real delays.
func NewSourceLimiterWithClock(interval time.Duration, now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *SourceLimiter {
	return &SourceLimiter{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      now,
		sleep:    sleep,
	}
}

// Wait blocks until the source's interval has elapsed since its previous
// request, or the context is cancelled. The slot is reserved under the lock
// so two concurrent workers cannot both believe they are clear to fetch the
// same source.
func (sl *SourceLimiter) Wait(ctx context.Context, source string) error {
	sl.mu.Lock()
	now := sl.now()
	next := sl.last[source].Add(sl.interval)
	if next.Before(now) {
		next = now
	}
	sl.last[source] = next
	sl.mu.Unlock()

	if d := next.Sub(now); d > 0 {
		return sl.sleep(ctx, d)
	}
	return nil
}

// Reserved returns the time of the most recently reserved slot for a source.
func (sl *SourceLimiter) Reserved(source string) time.Time {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.last[source]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
