package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cache is the process-wide cache for rendered page data.
var Cache *cache.Cache

// InitCache sets up the global cache: 5 minute default TTL, 10 minute sweep.
func InitCache() {
	Cache = cache.New(5*time.Minute, 10*time.Minute)
}

// CacheGet reads a value from the global cache.
func CacheGet(key string) (interface{}, bool) {
	return Cache.Get(key)
}

// CacheSet stores a value in the global cache.
func CacheSet(key string, value interface{}, duration time.Duration) {
	Cache.Set(key, value, duration)
}

// CacheDelete removes a key.
func CacheDelete(key string) {
	Cache.Delete(key)
}

// CacheClear drops everything.
func CacheClear() {
	Cache.Flush()
}

// CacheItem wraps a value with its expiry.
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// TTLCache is a bounded LRU whose entries also expire after a fixed TTL.
// Used for the mood and catalog id pools behind random selection.
type TTLCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewTTLCache builds a cache holding at most size entries for ttl each.
func NewTTLCache[T any](size int, ttl time.Duration) *TTLCache[T] {
	c, _ := lru.New[string, CacheItem[T]](size)
	return &TTLCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set stores or refreshes a value.
func (c *TTLCache[T]) Set(key string, value T) {
	item := CacheItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get returns the value if present and not expired.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete removes a key.
func (c *TTLCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

// Clear empties the cache.
func (c *TTLCache[T]) Clear() {
	c.storage.Purge()
}

// Len reports the number of cached entries.
func (c *TTLCache[T]) Len() int {
	return c.storage.Len()
}
