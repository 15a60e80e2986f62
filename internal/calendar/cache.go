package calendar

import (
	"sync"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// Cache holds per-source fetch results with a TTL. Fetches run on their own
// goroutines during consolidation, so all access is mutex-guarded.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	events    []event.Event
	timestamp time.Time
}

// NewCache creates a cache whose entries go stale after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached events for a source if the entry is still fresh.
func (c *Cache) Get(sourceID string) ([]event.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sourceID]
	if !ok || time.Since(entry.timestamp) > c.ttl {
		return nil, false
	}
	return entry.events, true
}

// GetStale returns whatever is cached for a source regardless of age.
// Staleness is preferred over emptiness when a refetch fails.
func (c *Cache) GetStale(sourceID string) ([]event.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sourceID]
	if !ok {
		return nil, false
	}
	return entry.events, true
}

// Set stores events for a source with the current timestamp.
func (c *Cache) Set(sourceID string, events []event.Event) {
	c.SetAt(sourceID, events, time.Now())
}

// SetAt stores events with an explicit timestamp, used when warming the
// cache from a disk snapshot whose age must be preserved.
func (c *Cache) SetAt(sourceID string, events []event.Event, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sourceID] = cacheEntry{events: events, timestamp: at}
}

// Evict removes a source's entry.
func (c *Cache) Evict(sourceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sourceID)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
