package archive

import (
	"sync"

	"github.com/pacs27/refet-etl/internal/source"
)

// The product catalog is small; this bound only matters if a process cycles
// through many families.
const maxCachedFamilies = 16

// ancillaryCache is a simple thread-safe LRU cache of terrain grids keyed by
// family.
type ancillaryCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value source.Ancillary
	prev  *entry
	next  *entry
}

func newAncillaryCache(maxEntries int) *ancillaryCache {
	return &ancillaryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *ancillaryCache) get(key string) (source.Ancillary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return source.Ancillary{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *ancillaryCache) put(key string, value source.Ancillary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ancillaryCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ancillaryCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ancillaryCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ancillaryCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
