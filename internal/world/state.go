// Package world owns the authoritative simulation state: the entity stores,
// the tile grid, and the tick/speed/pause bookkeeping. All access happens
// from the game-loop goroutine — no locks needed.
package world

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/data"
)

// Camera and Selection are presentation fields carried through the state so
// they survive save/load; the simulation itself never reads them.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

type Selection struct {
	Tiles  []ecs.EntityID `json:"tiles,omitempty"`
	Gnomes []ecs.EntityID `json:"gnomes,omitempty"`
}

// TileGrid is the opaque product of the (out-of-scope) world generator:
// dimensions, the horizon row, and one tile type per cell, row-major.
type TileGrid struct {
	Width    int
	Height   int
	HorizonY int
	Types    []component.TileType
}

// State is the aggregate world value threaded through every system.
type State struct {
	alloc    *ecs.Allocator
	registry *ecs.Registry
	Defs     *data.Tables

	Positions  *ecs.Store[component.Position]
	Velocities *ecs.Store[component.Velocity]
	Tiles      *ecs.Store[component.Tile]
	Gnomes     *ecs.Store[component.Gnome]
	Tasks      *ecs.Store[component.Task]
	Resources  *ecs.Store[component.Resource]
	Buildings  *ecs.Store[component.Building]
	Storages   *ecs.Store[component.Storage]

	Width    int
	Height   int
	HorizonY int
	tileGrid []ecs.EntityID // cell → tile entity, row-major [y*Width+x]

	Seed   uint64
	Tick   uint64
	Speed  float64
	Paused bool

	Camera    Camera
	Selection Selection

	destroyQueue []ecs.EntityID
}

// New builds a State from a generated grid, creating one tile entity per cell.
func New(defs *data.Tables, grid TileGrid, seed uint64) *State {
	s := newEmpty(defs)
	s.Width = grid.Width
	s.Height = grid.Height
	s.HorizonY = grid.HorizonY
	s.Seed = seed
	s.tileGrid = make([]ecs.EntityID, grid.Width*grid.Height)

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			tt := grid.Types[y*grid.Width+x]
			id := s.alloc.Create()
			s.Tiles.Set(id, &component.Tile{
				Type:       tt,
				Durability: defs.Tile(tt).Durability,
			})
			s.tileGrid[y*grid.Width+x] = id
		}
	}
	return s
}

func newEmpty(defs *data.Tables) *State {
	s := &State{
		alloc:      ecs.NewAllocator(),
		registry:   ecs.NewRegistry(),
		Defs:       defs,
		Positions:  ecs.NewStore[component.Position](),
		Velocities: ecs.NewStore[component.Velocity](),
		Tiles:      ecs.NewStore[component.Tile](),
		Gnomes:     ecs.NewStore[component.Gnome](),
		Tasks:      ecs.NewStore[component.Task](),
		Resources:  ecs.NewStore[component.Resource](),
		Buildings:  ecs.NewStore[component.Building](),
		Storages:   ecs.NewStore[component.Storage](),
		Speed:      1,
		Camera:     Camera{Zoom: 1},
	}
	s.registry.Register(s.Positions)
	s.registry.Register(s.Velocities)
	s.registry.Register(s.Tiles)
	s.registry.Register(s.Gnomes)
	s.registry.Register(s.Tasks)
	s.registry.Register(s.Resources)
	s.registry.Register(s.Buildings)
	s.registry.Register(s.Storages)
	return s
}

func (s *State) CreateEntity() ecs.EntityID { return s.alloc.Create() }

// Destroy queues an entity for end-of-tick cleanup. Removal from every
// component store happens atomically in FlushDestroyed.
func (s *State) Destroy(id ecs.EntityID) {
	s.destroyQueue = append(s.destroyQueue, id)
}

// DestroyNow removes an entity from every store immediately. Used where a
// later system in the same tick must not observe the entity anymore
// (collected resources, completed tasks).
func (s *State) DestroyNow(id ecs.EntityID) {
	s.registry.RemoveAll(id)
}

// FlushDestroyed destroys all queued entities. Called by the cleanup system
// at the end of each tick.
func (s *State) FlushDestroyed() {
	for _, id := range s.destroyQueue {
		s.registry.RemoveAll(id)
	}
	s.destroyQueue = s.destroyQueue[:0]
}

// InBounds reports whether a cell lies on the grid.
func (s *State) InBounds(x, y int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}

// TileAt returns the tile component at a cell, or nil out of bounds.
func (s *State) TileAt(x, y int) *component.Tile {
	if !s.InBounds(x, y) {
		return nil
	}
	t, _ := s.Tiles.Get(s.tileGrid[y*s.Width+x])
	return t
}

// TileEntity returns the tile entity id at a cell, zero out of bounds.
func (s *State) TileEntity(x, y int) ecs.EntityID {
	if !s.InBounds(x, y) {
		return 0
	}
	return s.tileGrid[y*s.Width+x]
}

// Passable reports whether a cell can be walked through. Out-of-bounds cells
// are impassable.
func (s *State) Passable(x, y int) bool {
	t := s.TileAt(x, y)
	return t != nil && s.Defs.Passable(t.Type)
}

// Solid reports whether a cell provides support. Out-of-bounds cells are not
// solid, so anything pushed past the grid edge keeps falling until cleanup.
func (s *State) Solid(x, y int) bool {
	t := s.TileAt(x, y)
	return t != nil && !s.Defs.Passable(t.Type)
}

// MoveCost is the pathfinding cost of stepping onto a cell.
func (s *State) MoveCost(x, y int) float64 {
	t := s.TileAt(x, y)
	if t == nil {
		return 1
	}
	return s.Defs.Tile(t.Type).MoveCost
}
