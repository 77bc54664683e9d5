// Package cache provides thread-safe generic caching and the highlighted-source cache.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Take removes key and returns its value. Only one of several concurrent callers for the
// same key observes ok == true.
func (c *Cache[K, V]) Take(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	return val, ok
}

// TakeAll empties the cache and returns what it held.
func (c *Cache[K, V]) TakeAll() map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.items
	c.items = make(map[K]V)
	return items
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) SetTo(items map[K]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

var highlightedCache = NewCache[string, string]()

// GetHighlighted returns source previously rendered with the given syntax theme.
func GetHighlighted(contentHash, syntaxTheme string) (string, bool) {
	return highlightedCache.Get(contentHash + ":" + syntaxTheme)
}

func SetHighlighted(contentHash, syntaxTheme, rendered string) {
	highlightedCache.Set(contentHash+":"+syntaxTheme, rendered)
}

func ClearHighlighted() {
	highlightedCache.Clear()
}
