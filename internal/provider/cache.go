package provider

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// HashContent creates a SHA256 hash of note content for cache keys.
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// CachedEmbedder wraps an Embedder with a bounded, content-hash keyed LRU
// cache. Identical content never pays for a second embedding call; eviction
// drops the least recently used vector once capacity is reached.
type CachedEmbedder struct {
	inner    Embedder
	capacity int

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type cacheItem struct {
	key    string
	vector []float32
}

// NewCachedEmbedder wraps inner with an LRU cache of the given capacity.
// A capacity below 1 defaults to 256 entries.
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	if capacity < 1 {
		capacity = 256
	}
	return &CachedEmbedder{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Dimension returns the wrapped embedder's dimensionality.
func (c *CachedEmbedder) Dimension() int {
	return c.inner.Dimension()
}

// Embed returns the cached vector for text, calling the wrapped embedder on
// a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := HashContent(text)

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		vector := el.Value.(*cacheItem).vector
		c.mu.Unlock()
		return vector, nil
	}
	c.mu.Unlock()

	vector, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		// Another caller filled the slot while we were embedding.
		c.order.MoveToFront(el)
		return el.Value.(*cacheItem).vector, nil
	}

	c.items[key] = c.order.PushFront(&cacheItem{key: key, vector: vector})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
	return vector, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
