package cache

import (
	"strconv"
	"sync/atomic"
	"time"
)

// Versioned caches derived read results (expense lists, sums, breakdowns)
// keyed by query. Invalidate bumps a namespace version, instantly orphaning
// every cached read; mutations call it before reporting success. Get reports
// the version it looked up under and Set requires that version back, so a
// result computed from pre-mutation state lands in the orphaned namespace
// rather than the fresh one — a write followed by a dependent read never
// observes data from before the write, even with the read in flight across
// the mutation. Orphaned entries age out through the underlying LRU.
type Versioned[T any] struct {
	lru     *LRUCache[T]
	version atomic.Uint64
}

func NewVersioned[T any](maxSize int, ttl time.Duration) *Versioned[T] {
	return &Versioned[T]{lru: NewLRUCache[T](maxSize, ttl)}
}

// Get looks key up under the current namespace version. On a miss the caller
// computes the value and hands the returned version back to Set.
func (v *Versioned[T]) Get(key string) (T, uint64, bool) {
	version := v.version.Load()
	data, ok := v.lru.Get(keyFor(version, key))
	return data, version, ok
}

// Set stores data under the version the filling Get observed. When
// Invalidate has run since, the entry is written into (or skipped as) the
// orphaned namespace and never served.
func (v *Versioned[T]) Set(key string, data T, version uint64) {
	if v.version.Load() != version {
		return
	}
	v.lru.Set(keyFor(version, key), data)
}

// Invalidate drops the whole namespace. Synchronous and cheap: a single
// counter increment.
func (v *Versioned[T]) Invalidate() {
	v.version.Add(1)
}

// CleanExpired sweeps aged-out entries from the backing LRU, orphaned
// versions included.
func (v *Versioned[T]) CleanExpired() int {
	return v.lru.CleanExpired()
}

func keyFor(version uint64, key string) string {
	return strconv.FormatUint(version, 10) + "|" + key
}
