package bot

import (
	"sync"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const DefaultCacheLimit = 10000

type boundFlag uint8

const (
	boundExact boundFlag = iota
	boundLower
	boundUpper
)

type cacheKey struct {
	board      string
	remaining  int
	maximizing bool
	ai         domain.Symbol
}

type cacheEntry struct {
	score float64
	flag  boundFlag
}

// Cache memoizes node scores. It is dropped wholesale once it reaches its limit.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	limit   int
	clears  int
}

func NewCache(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultCacheLimit
	}
	return &Cache{
		entries: make(map[cacheKey]cacheEntry),
		limit:   limit,
	}
}

func (c *Cache) get(key cacheKey) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) store(key cacheKey, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.limit {
		c.entries = make(map[cacheKey]cacheEntry)
		c.clears++
	}
	c.entries[key] = e
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clears reports how many times the cache overflowed and was emptied.
func (c *Cache) Clears() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}
