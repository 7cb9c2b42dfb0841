package command

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/world"
)

// Apply reduces one command into the world state. Invalid commands leave the
// state untouched.
//
// Cancellation is synchronous: the assigned gnome is detached in the same
// reduction, so no dangling cross-reference ever exists between ticks.
func Apply(s *world.State, speeds []float64, cmd Command) {
	switch cmd.Type {
	case TypeSelectTiles:
		if cmd.SelectTiles != nil {
			applySelectTiles(s, cmd.SelectTiles)
		}
	case TypeSelectGnomes:
		if cmd.SelectGnomes != nil {
			applySelectGnomes(s, cmd.SelectGnomes)
		}
	case TypeCreateDigTask:
		if cmd.Dig != nil {
			applyDig(s, cmd.Dig)
		}
	case TypeCancelTask:
		// Only dig tasks are cancellable. A collect task is the sole handle
		// on its grounded resource; nothing recreates it once removed.
		if cmd.Cancel != nil {
			if task, ok := s.Tasks.Get(cmd.Cancel.Task); ok && task.Kind == component.TaskDig {
				s.RemoveTask(cmd.Cancel.Task)
			}
		}
	case TypePanCamera:
		if cmd.Pan != nil {
			s.Camera.X += cmd.Pan.DX
			s.Camera.Y += cmd.Pan.DY
		}
	case TypeZoomCamera:
		if cmd.Zoom != nil && cmd.Zoom.Factor > 0 {
			if s.Camera.Zoom <= 0 {
				s.Camera.Zoom = 1
			}
			s.Camera.Zoom *= cmd.Zoom.Factor
		}
	case TypeSetSpeed:
		if cmd.Speed != nil && cmd.Speed.Index >= 0 && cmd.Speed.Index < len(speeds) {
			s.Speed = speeds[cmd.Speed.Index]
		}
	case TypeTogglePause:
		s.Paused = !s.Paused
	case TypeSpawnGnome:
		if cmd.Spawn != nil && s.Passable(cmd.Spawn.X, cmd.Spawn.Y) {
			s.SpawnGnome(float64(cmd.Spawn.X), float64(cmd.Spawn.Y))
		}
	case TypePlaceBuilding:
		if cmd.Build != nil {
			applyBuild(s, cmd.Build)
		}
	}
}

func applySelectTiles(s *world.State, c *SelectTilesCommand) {
	var sel []ecs.EntityID
	for y := c.Y; y < c.Y+c.H; y++ {
		for x := c.X; x < c.X+c.W; x++ {
			if id := s.TileEntity(x, y); !id.IsZero() {
				sel = append(sel, id)
			}
		}
	}
	s.Selection.Tiles = sel
}

func applySelectGnomes(s *world.State, c *SelectGnomesCommand) {
	var sel []ecs.EntityID
	for _, id := range c.Gnomes {
		if s.Gnomes.Has(id) {
			sel = append(sel, id)
		}
	}
	s.Selection.Gnomes = sel
}

func applyDig(s *world.State, c *DigCommand) {
	tile := s.TileAt(c.X, c.Y)
	if tile == nil || !s.Defs.Diggable(tile.Type) {
		return // air or indestructible: silently rejected
	}
	if !s.DigTaskAt(c.X, c.Y).IsZero() {
		return // one dig task per tile
	}
	s.SpawnDigTask(c.X, c.Y, c.Priority)
}

// applyBuild validates a building footprint: every footprint tile passable,
// the row directly beneath fully solid, and no overlap with an existing
// building.
func applyBuild(s *world.State, c *BuildCommand) {
	def, ok := s.Defs.Buildings[c.Type]
	if !ok {
		return
	}
	for y := c.Y; y < c.Y+def.Height; y++ {
		for x := c.X; x < c.X+def.Width; x++ {
			if !s.Passable(x, y) {
				return
			}
		}
	}
	for x := c.X; x < c.X+def.Width; x++ {
		if !s.Solid(x, c.Y+def.Height) {
			return
		}
	}
	overlap := false
	world.EachBuildingFootprint(s, func(id ecs.EntityID, b *component.Building, bx, by int) {
		if c.X < bx+b.Width && bx < c.X+def.Width &&
			c.Y < by+b.Height && by < c.Y+def.Height {
			overlap = true
		}
	})
	if overlap {
		return
	}
	s.SpawnBuilding(c.X, c.Y, def)
}
