package world

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
)

// EachBuildingFootprint iterates all buildings with their integer anchor
// cell, in ascending entity order.
func EachBuildingFootprint(s *State, fn func(id ecs.EntityID, b *component.Building, x, y int)) {
	ecs.Each2(s.Buildings, s.Positions, func(id ecs.EntityID, b *component.Building, p *component.Position) {
		fn(id, b, int(p.X), int(p.Y))
	})
}

// StorageSite is one storage building with its footprint anchor.
type StorageSite struct {
	ID     ecs.EntityID
	X, Y   int
	Width  int
	Height int
}

// StorageSites lists all storage buildings in ascending entity order.
func (s *State) StorageSites() []StorageSite {
	var sites []StorageSite
	EachBuildingFootprint(s, func(id ecs.EntityID, b *component.Building, x, y int) {
		if s.Storages.Has(id) {
			sites = append(sites, StorageSite{ID: id, X: x, Y: y, Width: b.Width, Height: b.Height})
		}
	})
	return sites
}

// FootprintTiles enumerates a storage site's cells in row-major order.
func (site StorageSite) FootprintTiles(fn func(x, y int)) {
	for y := site.Y; y < site.Y+site.Height; y++ {
		for x := site.X; x < site.X+site.Width; x++ {
			fn(x, y)
		}
	}
}

// OnFootprint reports whether a cell belongs to the site.
func (site StorageSite) OnFootprint(x, y int) bool {
	return x >= site.X && x < site.X+site.Width && y >= site.Y && y < site.Y+site.Height
}
