package system

import (
	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/core/event"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/path"
	"github.com/deephold/server/internal/world"
)

// DepositSystem sends gnomes with a non-empty inventory to the nearest
// storage (nearest by route length) and unloads them on arrival. It runs
// before task assignment by phase order, so gnomes always unload before
// taking new work. With no storage in the world a gnome simply holds its
// inventory.
type DepositSystem struct {
	world  *world.State
	cfg    *config.Config
	finder *path.Finder
	bus    *event.Bus
	log    *zap.Logger
}

func NewDepositSystem(ws *world.State, cfg *config.Config, finder *path.Finder, bus *event.Bus, log *zap.Logger) *DepositSystem {
	return &DepositSystem{world: ws, cfg: cfg, finder: finder, bus: bus, log: log}
}

func (s *DepositSystem) Phase() coresys.Phase { return coresys.PhaseDeposit }

func (s *DepositSystem) Update(tick uint64) {
	ws := s.world
	sites := ws.StorageSites()
	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		pos, ok := ws.Positions.Get(id)
		if !ok {
			continue
		}

		if g.State == component.GnomeDepositing && !g.HasPath() {
			s.arrive(id, g, pos, sites)
			continue
		}

		if unoccupied(g) && len(g.Inventory) > 0 && len(sites) > 0 {
			s.dispatch(id, g, pos, sites, tick)
		}
	}
}

// dispatch routes a loaded gnome to the closest reachable storage footprint
// tile. Ties break by lower site id, then footprint scan order.
func (s *DepositSystem) dispatch(id ecs.EntityID, g *component.Gnome, pos *component.Position, sites []world.StorageSite, tick uint64) {
	gx, gy := tileOf(pos)
	var best []component.PathNode
	found := false
	for _, site := range sites {
		site.FootprintTiles(func(x, y int) {
			route, ok := s.finder.Route(gx, gy, x, y, false, tick)
			if !ok {
				return
			}
			if !found || len(route) < len(best) {
				best = route
				found = true
			}
		})
	}
	if !found {
		return // nothing reachable; try again next tick
	}
	g.Path = best
	g.PathIndex = 0
	g.State = component.GnomeDepositing
}

// arrive transfers the gnome's entire inventory into the storage it is
// standing on.
func (s *DepositSystem) arrive(id ecs.EntityID, g *component.Gnome, pos *component.Position, sites []world.StorageSite) {
	gx, gy := tileOf(pos)
	for _, site := range sites {
		if !site.OnFootprint(gx, gy) {
			continue
		}
		st, ok := s.world.Storages.Get(site.ID)
		if !ok {
			continue
		}
		count := len(g.Inventory)
		for _, rt := range g.Inventory {
			st.Contents[rt]++
		}
		g.Inventory = g.Inventory[:0]
		g.State = component.GnomeIdle
		event.Emit(s.bus, event.Deposited{Gnome: id, Storage: site.ID, Count: count})
		s.log.Debug("inventory deposited",
			zap.Uint64("gnome", uint64(id)),
			zap.Uint64("storage", uint64(site.ID)),
			zap.Int("items", count),
		)
		return
	}
	// Storage vanished while walking; go back to idle and retry.
	g.State = component.GnomeIdle
}
