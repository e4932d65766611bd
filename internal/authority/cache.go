package authority

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded LRU map with a hard per-entry TTL. Expiry is checked
// lazily on Get; there is no background sweeper. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	entries  map[K]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// NewCache creates a cache holding at most capacity entries, each valid for
// ttl after insertion. Panics on non-positive capacity or ttl: cache sizing
// is construction-time configuration, not runtime input.
func NewCache[K comparable, V any](capacity int, ttl time.Duration) *Cache[K, V] {
	if capacity <= 0 {
		panic("authority: cache capacity must be positive")
	}
	if ttl <= 0 {
		panic("authority: cache ttl must be positive")
	}
	return &Cache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached value for key. Expired entries are removed and
// reported as misses.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	entry := el.Value.(*cacheEntry[K, V])
	if c.now().After(entry.expires) {
		c.order.Remove(el)
		delete(c.entries, key)
		return zero, false
	}
	c.order.MoveToFront(el)
	return entry.value, true
}

// Put stores a value, refreshing recency and TTL for existing keys. When the
// cache is full, exactly the least-recently-used entry is evicted.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry[K, V])
		entry.value = value
		entry.expires = expires
		c.order.MoveToFront(el)
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry[K, V]).key)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value, expires: expires})
}

// Len returns the number of stored entries, including any not yet reaped
// expired ones.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
