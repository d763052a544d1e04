package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver wraps a Resolver with TTL-based caching so that authorization
// lookups do not hit the database on every request.
type CachedResolver[K comparable, V any] struct {
	inner Resolver[K, V]
	cache map[K]*cacheEntry[V]
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCachedResolver wraps a resolver with caching.
// ttl is how long values are kept before re-fetching.
func NewCachedResolver[K comparable, V any](inner Resolver[K, V], ttl time.Duration) *CachedResolver[K, V] {
	return &CachedResolver[K, V]{
		inner: inner,
		cache: make(map[K]*cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Resolve returns the value for key, using the cache when still fresh.
// Errors are never cached.
func (r *CachedResolver[K, V]) Resolve(ctx context.Context, key K) (V, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()

	if ok && r.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := r.inner.Resolve(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	r.mu.Lock()
	r.cache[key] = &cacheEntry[V]{
		value:     value,
		expiresAt: r.now().Add(r.ttl),
	}
	r.mu.Unlock()

	return value, nil
}

// Invalidate removes a key from the cache.
// Call this when the underlying record changes.
func (r *CachedResolver[K, V]) Invalidate(key K) {
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}
