package translation

import "sync"

const DefaultCacheSize = 100

// Cache is a bounded map that evicts in insertion order. Get does not
// refresh an entry, so the oldest inserted key always goes first.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string
}

// NewCache returns a cache holding at most maxSize entries; maxSize <= 0 uses DefaultCacheSize.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		entries: make(map[string]string, maxSize),
		order:   make([]string, 0, maxSize),
	}
}

func (c *Cache) Get(text string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[text]
	return v, ok
}

// Put stores value under text. Overwriting an existing key keeps its
// original eviction position.
func (c *Cache) Put(text, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[text]; ok {
		c.entries[text] = value
		return
	}
	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[text] = value
	c.order = append(c.order, text)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]string, c.maxSize)
	c.order = make([]string, 0, c.maxSize)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) MaxSize() int {
	return c.maxSize
}
