package embedder

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of embeddings kept when no size is given
const DefaultCacheSize = 10000

// Cache is an in-process LRU of embeddings keyed by cacheKey. Values are
// copied on the way in and out.
type Cache struct {
	entries *lru.Cache[string, *Embedding]
}

// NewCache creates a cache holding up to size embeddings. A non-positive
// size uses DefaultCacheSize.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size
	entries, _ := lru.New[string, *Embedding](size)
	return &Cache{entries: entries}
}

// Get returns a copy of the cached embedding for key
func (c *Cache) Get(key string) (*Embedding, bool) {
	emb, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return emb.Clone(), true
}

// Set stores a copy of emb, evicting the least recently used entry when full
func (c *Cache) Set(key string, emb *Embedding) {
	c.entries.Add(key, emb.Clone())
}

// Size returns the number of cached embeddings
func (c *Cache) Size() int {
	return c.entries.Len()
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.entries.Purge()
}
