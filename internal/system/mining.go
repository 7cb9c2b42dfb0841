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

// MiningSystem reduces the durability of tiles under active mining. At zero
// durability the tile becomes the floor type and, if its type maps to a
// resource, spawns one ungrounded resource at the tile's position.
// Indestructible and already-passable tiles never drop anything.
type MiningSystem struct {
	world  *world.State
	cfg    *config.Config
	finder *path.Finder
	bus    *event.Bus
	log    *zap.Logger
}

func NewMiningSystem(ws *world.State, cfg *config.Config, finder *path.Finder, bus *event.Bus, log *zap.Logger) *MiningSystem {
	return &MiningSystem{world: ws, cfg: cfg, finder: finder, bus: bus, log: log}
}

func (s *MiningSystem) Phase() coresys.Phase { return coresys.PhaseMining }

func (s *MiningSystem) Update(tick uint64) {
	ws := s.world
	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		if g.State != component.GnomeMining {
			continue
		}
		if g.CurrentTask.IsZero() {
			g.State = component.GnomeIdle
			continue
		}
		s.mine(id, g, tick)
	}
}

func (s *MiningSystem) mine(gnomeID ecs.EntityID, g *component.Gnome, tick uint64) {
	ws := s.world
	task, ok := ws.Tasks.Get(g.CurrentTask)
	if !ok {
		g.CurrentTask = 0
		g.State = component.GnomeIdle
		return
	}
	tile := ws.TileAt(task.TargetX, task.TargetY)
	if tile == nil || ws.Defs.Passable(tile.Type) {
		// Tile already opened up; nothing left to dig.
		s.complete(g.CurrentTask, gnomeID, g, task)
		return
	}
	def := ws.Defs.Tile(tile.Type)
	if def.Indestructible || def.MineRate <= 0 {
		ws.DetachTask(g.CurrentTask)
		return
	}

	tile.Durability -= def.MineRate
	if def.Durability > 0 {
		task.Progress = 1 - tile.Durability/def.Durability
	}
	if tile.Durability > 0 {
		return
	}

	minedType := tile.Type
	tile.Type = ws.Defs.FloorType
	tile.Durability = 0
	// Terrain changed; cached routes against the old grid must not survive.
	s.finder.Invalidate()

	if def.Drop != "" {
		ws.SpawnResource(float64(task.TargetX), float64(task.TargetY),
			component.ResourceType(def.Drop))
	}
	event.Emit(s.bus, event.TileMined{
		X:    task.TargetX,
		Y:    task.TargetY,
		Type: minedType,
		By:   gnomeID,
	})
	s.log.Debug("tile mined",
		zap.Int("x", task.TargetX),
		zap.Int("y", task.TargetY),
		zap.String("tile", def.Name),
		zap.Uint64("gnome", uint64(gnomeID)),
	)
	s.complete(g.CurrentTask, gnomeID, g, task)
}

func (s *MiningSystem) complete(taskID, gnomeID ecs.EntityID, g *component.Gnome, task *component.Task) {
	kind := task.Kind
	task.AssignedGnome = 0
	g.CurrentTask = 0
	g.State = component.GnomeIdle
	s.world.DestroyNow(taskID)
	event.Emit(s.bus, event.TaskCompleted{Task: taskID, Gnome: gnomeID, Kind: kind})
}
