package search

import "sync"

// TextCache stores linearized page text by page number. It is read through
// by searches and survives them; only loading a new document resets it.
type TextCache struct {
	mu    sync.RWMutex
	pages map[int]string
}

func NewTextCache() *TextCache {
	return &TextCache{pages: make(map[int]string)}
}

func (c *TextCache) Get(page int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.pages[page]
	return text, ok
}

func (c *TextCache) Put(page int, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[page] = text
}

func (c *TextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

func (c *TextCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = make(map[int]string)
}
