package path

import "github.com/deephold/server/internal/component"

type cacheKey struct {
	sx, sy, tx, ty int
	adjacent       bool
}

type cacheEntry struct {
	route    []component.PathNode // nil = cached "unreachable"
	storedAt uint64
}

// cache is a bounded route cache with a tick-based TTL. Entries past TTL are
// never served; terrain changes clear it wholesale. Unreachable results are
// cached too — repeated failed queries are the expensive case.
type cache struct {
	capacity int
	ttl      uint64
	entries  map[cacheKey]cacheEntry
	order    []cacheKey // insertion order for eviction
}

func newCache(capacity int, ttl uint64) *cache {
	return &cache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[cacheKey]cacheEntry, capacity),
	}
}

func (c *cache) get(key cacheKey, tick uint64) ([]component.PathNode, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if tick-e.storedAt > c.ttl {
		delete(c.entries, key)
		c.dropOrder(key)
		return nil, false
	}
	return e.route, true
}

// dropOrder removes a key's eviction slot so a later re-insert of the same
// key does not appear in order twice.
func (c *cache) dropOrder(key cacheKey) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *cache) put(key cacheKey, route []component.PathNode, tick uint64) {
	if _, exists := c.entries[key]; !exists {
		for len(c.entries) >= c.capacity && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{route: route, storedAt: tick}
}

func (c *cache) clear() {
	c.entries = make(map[cacheKey]cacheEntry, c.capacity)
	c.order = c.order[:0]
}
