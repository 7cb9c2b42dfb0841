package system

import (
	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/world"
)

// CleanupSystem runs last: entities that fell past the world's bottom margin
// are destroyed, then the destroy queue is flushed so every removal this
// tick becomes final and atomic across all component stores.
type CleanupSystem struct {
	world *world.State
	cfg   *config.Config
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, cfg *config.Config, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, cfg: cfg, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(tick uint64) {
	ws := s.world
	limit := float64(ws.Height + s.cfg.Sim.WorldMargin)
	ws.Positions.Each(func(id ecs.EntityID, pos *component.Position) {
		if pos.Y > limit && !ws.Tiles.Has(id) {
			if g, ok := ws.Gnomes.Get(id); ok && !g.CurrentTask.IsZero() {
				ws.DetachTask(g.CurrentTask)
			}
			s.log.Debug("entity fell out of the world", zap.Uint64("entity", uint64(id)))
			ws.Destroy(id)
		}
	})
	ws.FlushDestroyed()
}
