package path

import "github.com/deephold/server/internal/component"

// Finder is the cached pathfinding front end the systems use. Routes are
// cache-only runtime state: a Finder is rebuilt empty on load and never
// serialized.
type Finder struct {
	grid  Grid
	cache *cache
}

func NewFinder(grid Grid, cacheSize int, cacheTTL int) *Finder {
	return &Finder{
		grid:  grid,
		cache: newCache(cacheSize, uint64(cacheTTL)),
	}
}

// Route returns a route and whether the target is reachable. Served from
// cache when a fresh entry exists; the returned slice is a copy, callers own
// it. Route semantics match Find.
func (f *Finder) Route(sx, sy, tx, ty int, toAdjacent bool, tick uint64) ([]component.PathNode, bool) {
	key := cacheKey{sx: sx, sy: sy, tx: tx, ty: ty, adjacent: toAdjacent}
	route, hit := f.cache.get(key, tick)
	if !hit {
		route = Find(f.grid, sx, sy, tx, ty, toAdjacent)
		f.cache.put(key, route, tick)
	}
	if route == nil {
		return nil, false
	}
	return append([]component.PathNode{}, route...), true
}

// Length returns the route length to a target, with ok=false when
// unreachable. This is the distance metric task assignment ranks by.
func (f *Finder) Length(sx, sy, tx, ty int, toAdjacent bool, tick uint64) (int, bool) {
	route, ok := f.Route(sx, sy, tx, ty, toAdjacent, tick)
	if !ok {
		return 0, false
	}
	return len(route), true
}

// Invalidate drops every cached route. Called when terrain changes, so a
// route computed against the old grid can never be served afterwards.
func (f *Finder) Invalidate() {
	f.cache.clear()
}
