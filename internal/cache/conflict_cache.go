// Package cache holds ConflictInfo records awaiting client resolution: a
// short-lived, per-session store with a 1-hour time-to-live and a bounded
// in-memory fallback, adapted from the knowledge engine's in-memory
// document-store pattern.
package cache

import (
	"sync"
	"time"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

const (
	ttl      = time.Hour
	capacity = 100
)

// Durable is an optional session-local persistence backend. When present,
// conflicts are saved under "conflict:<id>" keys; the in-memory map is
// always available as a fallback.
type Durable interface {
	Save(key string, value []byte, storedAt time.Time) error
	Load(key string) (value []byte, storedAt time.Time, ok bool, err error)
	Remove(key string) error
}

type entry struct {
	info     store.ConflictInfo
	storedAt time.Time
}

// Cache stores ConflictInfo records keyed by conflict id.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string // first-insertion order, for capacity eviction
	durable Durable
}

// New creates an empty conflict cache. durable may be nil.
func New(durable Durable) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		durable: durable,
	}
}

// Save stores a ConflictInfo under its own conflict id.
func (c *Cache) Save(info store.ConflictInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[info.ConflictID] = &entry{info: info, storedAt: now}
	c.order = append(c.order, info.ConflictID)
	c.evictIfNeeded(info.ConflictID)

	if c.durable != nil {
		if b, err := marshalConflict(info); err == nil {
			_ = c.durable.Save("conflict:"+info.ConflictID, b, now)
		}
	}
	return nil
}

// Load returns the conflict for id, or ok=false if it was never stored,
// has expired past its 1-hour TTL (evicting it), or was already resolved.
func (c *Cache) Load(id string) (store.ConflictInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		if restored, storedAt, found := c.loadFromDurable(id); found {
			if time.Since(storedAt) > ttl {
				_ = c.removeDurable(id)
				return store.ConflictInfo{}, false
			}
			return restored, true
		}
		return store.ConflictInfo{}, false
	}
	if time.Since(e.storedAt) > ttl {
		c.removeLocked(id)
		return store.ConflictInfo{}, false
	}
	return e.info, true
}

// Remove evicts a conflict, used once it has been consumed by a resolution
// call.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Cache) removeLocked(id string) {
	delete(c.entries, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	_ = c.removeDurable(id)
}

// evictIfNeeded drops the oldest entry by insertion order when the cache
// exceeds its capacity, unless the candidate for eviction is the entry
// just inserted.
func (c *Cache) evictIfNeeded(justInserted string) {
	for len(c.entries) > capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if oldest == justInserted {
			continue
		}
		delete(c.entries, oldest)
	}
}

func (c *Cache) loadFromDurable(id string) (store.ConflictInfo, time.Time, bool) {
	if c.durable == nil {
		return store.ConflictInfo{}, time.Time{}, false
	}
	b, storedAt, ok, err := c.durable.Load("conflict:" + id)
	if err != nil || !ok {
		return store.ConflictInfo{}, time.Time{}, false
	}
	info, err := unmarshalConflict(b)
	if err != nil {
		return store.ConflictInfo{}, time.Time{}, false
	}
	return info, storedAt, true
}

func (c *Cache) removeDurable(id string) error {
	if c.durable == nil {
		return nil
	}
	return c.durable.Remove("conflict:" + id)
}
