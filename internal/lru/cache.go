// Package lru is a small thread-safe cache that evicts the least recently
// used entry once it is full.
package lru

import (
	"container/list"
	"sync"
)

type Identifier interface {
	Identifier() string
}

type listEntry[T Identifier] struct {
	id    string
	entry T
}

// Cache holds at most capacity entries keyed by their Identifier.
type Cache[T Identifier] struct {
	capacity int
	mu       sync.Mutex
	order    *list.List
	index    map[string]*list.Element
}

func NewCache[T Identifier](capacity int) *Cache[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[T]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Add inserts entry or replaces the entry with the same identifier.
func (c *Cache[T]) Add(entry T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := entry.Identifier()
	if element, ok := c.index[id]; ok {
		element.Value.(*listEntry[T]).entry = entry
		c.order.MoveToFront(element)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictUnsafe()
	}
	c.index[id] = c.order.PushFront(&listEntry[T]{id: id, entry: entry})
}

func (c *Cache[T]) evictUnsafe() {
	element := c.order.Back()
	if element == nil {
		return
	}
	c.order.Remove(element)
	delete(c.index, element.Value.(*listEntry[T]).id)
}

func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*listEntry[T]).entry, true
}

func (c *Cache[T]) Delete(id string) (present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.index[id]
	if !ok {
		return false
	}
	c.order.Remove(element)
	delete(c.index, id)
	return true
}

// Purge drops every entry.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	clear(c.index)
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}
