package system

import (
	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/core/event"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/world"
)

// CollectSystem resolves task-travel arrivals: a gnome reaching a dig target
// starts mining next phase cycle; a gnome reaching a grounded resource picks
// it up, destroying resource and task together.
type CollectSystem struct {
	world *world.State
	cfg   *config.Config
	bus   *event.Bus
	log   *zap.Logger
}

func NewCollectSystem(ws *world.State, cfg *config.Config, bus *event.Bus, log *zap.Logger) *CollectSystem {
	return &CollectSystem{world: ws, cfg: cfg, bus: bus, log: log}
}

func (s *CollectSystem) Phase() coresys.Phase { return coresys.PhaseCollect }

func (s *CollectSystem) Update(tick uint64) {
	ws := s.world
	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		if g.CurrentTask.IsZero() || g.HasPath() {
			continue
		}
		switch g.State {
		case component.GnomeWalking:
			s.arriveDig(id, g)
		case component.GnomeCollecting:
			s.arriveCollect(id, g)
		}
	}
}

// arriveDig turns an arrived dig traveler into a miner, provided it actually
// stands adjacent to a still-solid target.
func (s *CollectSystem) arriveDig(id ecs.EntityID, g *component.Gnome) {
	ws := s.world
	task, ok := ws.Tasks.Get(g.CurrentTask)
	if !ok {
		g.CurrentTask = 0
		g.State = component.GnomeIdle
		return
	}
	tile := ws.TileAt(task.TargetX, task.TargetY)
	if tile == nil || ws.Defs.Passable(tile.Type) {
		// Mined out from the other side while this gnome traveled.
		taskID := g.CurrentTask
		task.AssignedGnome = 0
		g.CurrentTask = 0
		g.State = component.GnomeIdle
		ws.DestroyNow(taskID)
		event.Emit(s.bus, event.TaskCompleted{Task: taskID, Gnome: id, Kind: component.TaskDig})
		return
	}
	pos, ok := ws.Positions.Get(id)
	if !ok {
		return
	}
	gx, gy := tileOf(pos)
	if manhattan(gx, gy, task.TargetX, task.TargetY) != 1 {
		// Not where the route should have ended (knocked off by a
		// fall); release the task for reassignment.
		ws.DetachTask(g.CurrentTask)
		return
	}
	g.ClearPath()
	g.State = component.GnomeMining
}

// arriveCollect picks up the targeted resource: destroyed, appended to the
// gnome's inventory, and the collect task destroyed, all in one step.
func (s *CollectSystem) arriveCollect(id ecs.EntityID, g *component.Gnome) {
	ws := s.world
	taskID := g.CurrentTask
	task, ok := ws.Tasks.Get(taskID)
	if !ok {
		g.CurrentTask = 0
		g.State = component.GnomeIdle
		return
	}
	res, alive := ws.Resources.Get(task.TargetEntity)
	if !alive || !res.Grounded {
		// Resource gone or airborne again; the task is stale.
		ws.RemoveTask(taskID)
		return
	}
	pos, ok := ws.Positions.Get(id)
	if !ok {
		return
	}
	rpos, ok := ws.Positions.Get(task.TargetEntity)
	if !ok {
		ws.RemoveTask(taskID)
		return
	}
	gx, gy := tileOf(pos)
	rx, ry := tileOf(rpos)
	if gx != rx || gy != ry {
		ws.DetachTask(taskID)
		return
	}
	if len(g.Inventory) >= s.cfg.Sim.CarryCapacity {
		// Capacity filled since assignment; hand the task back.
		ws.DetachTask(taskID)
		return
	}

	g.Inventory = append(g.Inventory, res.Type)
	ws.DestroyNow(task.TargetEntity)
	task.AssignedGnome = 0
	g.CurrentTask = 0
	g.State = component.GnomeIdle
	ws.DestroyNow(taskID)
	event.Emit(s.bus, event.TaskCompleted{Task: taskID, Gnome: id, Kind: component.TaskCollect})
	s.log.Debug("resource collected",
		zap.Uint64("gnome", uint64(id)),
		zap.String("type", string(res.Type)),
		zap.Int("carrying", len(g.Inventory)),
	)
}

func manhattan(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
