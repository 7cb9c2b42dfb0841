package world

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/data"
)

// Snapshot is the plain-data form of a State: nested records, slices, and
// primitive-keyed maps only. It serves both the render contract (read-only
// per-frame copy) and the persistence contract (lossless round trip).
// Cache-only runtime state (the path cache) is deliberately absent.
type Snapshot struct {
	Tick       uint64  `json:"tick"`
	Seed       uint64  `json:"seed"`
	Speed      float64 `json:"speed"`
	Paused     bool    `json:"paused"`
	NextEntity uint64  `json:"next_entity"`

	Width    int `json:"width"`
	Height   int `json:"height"`
	HorizonY int `json:"horizon_y"`

	Camera    Camera    `json:"camera"`
	Selection Selection `json:"selection"`

	TileGrid []ecs.EntityID `json:"tile_grid"`

	Positions  map[ecs.EntityID]component.Position `json:"positions"`
	Velocities map[ecs.EntityID]component.Velocity `json:"velocities"`
	Tiles      map[ecs.EntityID]component.Tile     `json:"tiles"`
	Gnomes     map[ecs.EntityID]component.Gnome    `json:"gnomes"`
	Tasks      map[ecs.EntityID]component.Task     `json:"tasks"`
	Resources  map[ecs.EntityID]component.Resource `json:"resources"`
	Buildings  map[ecs.EntityID]component.Building `json:"buildings"`
	Storages   map[ecs.EntityID]component.Storage  `json:"storages"`
}

// Serialize deep-copies the state into its plain-data form. The result
// shares no memory with the live world; the render layer may hold it across
// frames and the persistence layer may encode it off the loop goroutine.
func (s *State) Serialize() *Snapshot {
	snap := &Snapshot{
		Tick:       s.Tick,
		Seed:       s.Seed,
		Speed:      s.Speed,
		Paused:     s.Paused,
		NextEntity: uint64(s.alloc.Next()),
		Width:      s.Width,
		Height:     s.Height,
		HorizonY:   s.HorizonY,
		Camera:     s.Camera,
		Selection: Selection{
			Tiles:  append([]ecs.EntityID(nil), s.Selection.Tiles...),
			Gnomes: append([]ecs.EntityID(nil), s.Selection.Gnomes...),
		},
		TileGrid:   append([]ecs.EntityID(nil), s.tileGrid...),
		Positions:  make(map[ecs.EntityID]component.Position, s.Positions.Len()),
		Velocities: make(map[ecs.EntityID]component.Velocity, s.Velocities.Len()),
		Tiles:      make(map[ecs.EntityID]component.Tile, s.Tiles.Len()),
		Gnomes:     make(map[ecs.EntityID]component.Gnome, s.Gnomes.Len()),
		Tasks:      make(map[ecs.EntityID]component.Task, s.Tasks.Len()),
		Resources:  make(map[ecs.EntityID]component.Resource, s.Resources.Len()),
		Buildings:  make(map[ecs.EntityID]component.Building, s.Buildings.Len()),
		Storages:   make(map[ecs.EntityID]component.Storage, s.Storages.Len()),
	}
	s.Positions.Each(func(id ecs.EntityID, c *component.Position) { snap.Positions[id] = *c })
	s.Velocities.Each(func(id ecs.EntityID, c *component.Velocity) { snap.Velocities[id] = *c })
	s.Tiles.Each(func(id ecs.EntityID, c *component.Tile) { snap.Tiles[id] = *c })
	s.Gnomes.Each(func(id ecs.EntityID, c *component.Gnome) { snap.Gnomes[id] = cloneGnome(c) })
	s.Tasks.Each(func(id ecs.EntityID, c *component.Task) { snap.Tasks[id] = *c })
	s.Resources.Each(func(id ecs.EntityID, c *component.Resource) { snap.Resources[id] = *c })
	s.Buildings.Each(func(id ecs.EntityID, c *component.Building) { snap.Buildings[id] = *c })
	s.Storages.Each(func(id ecs.EntityID, c *component.Storage) { snap.Storages[id] = cloneStorage(c) })
	return snap
}

// Restore rebuilds a live State from a snapshot. Missing optional fields in
// older or partial snapshots are backfilled with safe defaults — restore
// never fails on legacy data.
func Restore(snap *Snapshot, defs *data.Tables) *State {
	s := newEmpty(defs)
	s.Tick = snap.Tick
	s.Seed = snap.Seed
	s.Speed = snap.Speed
	if s.Speed <= 0 {
		s.Speed = 1
	}
	s.Paused = snap.Paused
	s.Width = snap.Width
	s.Height = snap.Height
	s.HorizonY = snap.HorizonY
	s.Camera = snap.Camera
	if s.Camera.Zoom <= 0 {
		s.Camera.Zoom = 1
	}
	s.Selection = Selection{
		Tiles:  append([]ecs.EntityID(nil), snap.Selection.Tiles...),
		Gnomes: append([]ecs.EntityID(nil), snap.Selection.Gnomes...),
	}

	var maxID ecs.EntityID
	touch := func(id ecs.EntityID) {
		if id > maxID {
			maxID = id
		}
	}
	for id, c := range snap.Positions {
		cc := c
		s.Positions.Set(id, &cc)
		touch(id)
	}
	for id, c := range snap.Velocities {
		cc := c
		s.Velocities.Set(id, &cc)
		touch(id)
	}
	for id, c := range snap.Tiles {
		cc := c
		s.Tiles.Set(id, &cc)
		touch(id)
	}
	for id, c := range snap.Gnomes {
		cc := cloneGnome(&c)
		if cc.Inventory == nil {
			cc.Inventory = []component.ResourceType{}
		}
		s.Gnomes.Set(id, &cc)
		// Any moving entity needs a velocity; legacy saves may lack it.
		if !s.Velocities.Has(id) {
			s.Velocities.Set(id, &component.Velocity{})
		}
		touch(id)
	}
	for id, c := range snap.Tasks {
		cc := c
		s.Tasks.Set(id, &cc)
		touch(id)
	}
	for id, c := range snap.Resources {
		cc := c
		s.Resources.Set(id, &cc)
		if !s.Velocities.Has(id) {
			s.Velocities.Set(id, &component.Velocity{})
		}
		touch(id)
	}
	for id, c := range snap.Buildings {
		cc := c
		s.Buildings.Set(id, &cc)
		touch(id)
	}
	for id, c := range snap.Storages {
		cc := cloneStorage(&c)
		if cc.Contents == nil {
			cc.Contents = make(map[component.ResourceType]int)
		}
		s.Storages.Set(id, &cc)
		touch(id)
	}

	s.tileGrid = append([]ecs.EntityID(nil), snap.TileGrid...)
	if len(s.tileGrid) != s.Width*s.Height {
		// Legacy snapshot without an explicit grid: tile entities were
		// created row-major at world build, so ascending id order is the
		// cell order.
		s.tileGrid = s.Tiles.IDs()
	}

	if snap.NextEntity > 0 {
		s.alloc.SetNext(ecs.EntityID(snap.NextEntity))
	}
	s.alloc.SetNext(maxID + 1)
	return s
}

func cloneGnome(g *component.Gnome) component.Gnome {
	out := *g
	out.Path = append([]component.PathNode(nil), g.Path...)
	out.Inventory = append([]component.ResourceType{}, g.Inventory...)
	if g.Idle != nil {
		idle := *g.Idle
		out.Idle = &idle
	}
	return out
}

func cloneStorage(st *component.Storage) component.Storage {
	out := component.Storage{Contents: make(map[component.ResourceType]int, len(st.Contents))}
	for k, v := range st.Contents {
		out.Contents[k] = v
	}
	return out
}
