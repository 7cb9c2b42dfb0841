package world

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/data"
)

// SpawnGnome creates an idle colonist at the given tile.
func (s *State) SpawnGnome(x, y float64) ecs.EntityID {
	id := s.alloc.Create()
	s.Positions.Set(id, &component.Position{X: x, Y: y})
	s.Velocities.Set(id, &component.Velocity{})
	s.Gnomes.Set(id, &component.Gnome{
		State:     component.GnomeIdle,
		Inventory: []component.ResourceType{},
	})
	return id
}

// SpawnResource creates a loose, not-yet-grounded resource at the given tile.
// Resources are born ungrounded; the physics system grounds them and only
// that transition generates their collect task.
func (s *State) SpawnResource(x, y float64, rt component.ResourceType) ecs.EntityID {
	id := s.alloc.Create()
	s.Positions.Set(id, &component.Position{X: x, Y: y})
	s.Velocities.Set(id, &component.Velocity{})
	s.Resources.Set(id, &component.Resource{Type: rt})
	return id
}

// SpawnDigTask creates an unassigned dig task for a tile.
func (s *State) SpawnDigTask(x, y int, prio component.Priority) ecs.EntityID {
	id := s.alloc.Create()
	s.Tasks.Set(id, &component.Task{
		Kind:      component.TaskDig,
		TargetX:   x,
		TargetY:   y,
		Priority:  prio,
		CreatedAt: s.Tick,
	})
	return id
}

// SpawnCollectTask creates the collect task for a grounded resource.
func (s *State) SpawnCollectTask(res ecs.EntityID, x, y int) ecs.EntityID {
	id := s.alloc.Create()
	s.Tasks.Set(id, &component.Task{
		Kind:         component.TaskCollect,
		TargetX:      x,
		TargetY:      y,
		Priority:     component.PriorityNormal,
		CreatedAt:    s.Tick,
		TargetEntity: res,
	})
	return id
}

// SpawnBuilding places a building anchored at (x, y). Validation happens in
// the command reducer; this only materializes the entity.
func (s *State) SpawnBuilding(x, y int, def data.BuildingDef) ecs.EntityID {
	id := s.alloc.Create()
	s.Positions.Set(id, &component.Position{X: float64(x), Y: float64(y)})
	s.Buildings.Set(id, &component.Building{
		Type:   def.Type,
		Width:  def.Width,
		Height: def.Height,
	})
	if def.Storage {
		s.Storages.Set(id, component.NewStorage())
	}
	return id
}

// AssignTask links a task and a gnome bidirectionally and starts the gnome
// walking its route. Both sides of the reference are written here and only
// here, which is what upholds the cross-reference invariant.
func (s *State) AssignTask(taskID, gnomeID ecs.EntityID, route []component.PathNode) {
	task, ok := s.Tasks.Get(taskID)
	if !ok {
		return
	}
	gnome, ok := s.Gnomes.Get(gnomeID)
	if !ok {
		return
	}
	task.AssignedGnome = gnomeID
	gnome.CurrentTask = taskID
	gnome.Path = route
	gnome.PathIndex = 0
	gnome.Idle = nil
	if task.Kind == component.TaskCollect {
		gnome.State = component.GnomeCollecting
	} else {
		gnome.State = component.GnomeWalking
	}
}

// DetachTask unlinks a task from its assigned gnome, if any, returning the
// task to the unassigned pool. The gnome goes back to idle unless it is
// mid-air.
func (s *State) DetachTask(taskID ecs.EntityID) {
	task, ok := s.Tasks.Get(taskID)
	if !ok {
		return
	}
	g := task.AssignedGnome
	task.AssignedGnome = 0
	task.Progress = 0
	if g.IsZero() {
		return
	}
	if gnome, ok := s.Gnomes.Get(g); ok && gnome.CurrentTask == taskID {
		gnome.CurrentTask = 0
		gnome.ClearPath()
		if gnome.State != component.GnomeFalling {
			gnome.State = component.GnomeIdle
		}
	}
}

// RemoveTask detaches and destroys a task immediately.
func (s *State) RemoveTask(taskID ecs.EntityID) {
	s.DetachTask(taskID)
	s.DestroyNow(taskID)
}

// CollectTaskFor finds the collect task referencing a resource, zero if none.
func (s *State) CollectTaskFor(res ecs.EntityID) ecs.EntityID {
	var found ecs.EntityID
	s.Tasks.Each(func(id ecs.EntityID, t *component.Task) {
		if found.IsZero() && t.Kind == component.TaskCollect && t.TargetEntity == res {
			found = id
		}
	})
	return found
}

// DigTaskAt finds the dig task targeting a cell, zero if none.
func (s *State) DigTaskAt(x, y int) ecs.EntityID {
	var found ecs.EntityID
	s.Tasks.Each(func(id ecs.EntityID, t *component.Task) {
		if found.IsZero() && t.Kind == component.TaskDig && t.TargetX == x && t.TargetY == y {
			found = id
		}
	})
	return found
}
