package system

import (
	"go.uber.org/zap"

	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/world"
)

// SnapshotSink receives completed autosave snapshots. Offer must not block:
// all actual I/O happens outside the tick pipeline, on the sink's own
// goroutine, exchanging only the plain snapshot data across the boundary.
type SnapshotSink interface {
	Offer(snap *world.Snapshot) bool
}

// AutosaveSystem serializes the world every interval ticks and hands the
// snapshot to the sink. Runs in the persist phase, after all gameplay
// systems, so a saved tick is always a fully settled tick.
type AutosaveSystem struct {
	world    *world.State
	sink     SnapshotSink
	interval uint64
	log      *zap.Logger
}

func NewAutosaveSystem(ws *world.State, sink SnapshotSink, intervalTicks int, log *zap.Logger) *AutosaveSystem {
	return &AutosaveSystem{
		world:    ws,
		sink:     sink,
		interval: uint64(intervalTicks),
		log:      log,
	}
}

func (s *AutosaveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AutosaveSystem) Update(tick uint64) {
	if s.interval == 0 || tick == 0 || tick%s.interval != 0 {
		return
	}
	snap := s.world.Serialize()
	if !s.sink.Offer(snap) {
		s.log.Warn("autosave skipped, writer busy", zap.Uint64("tick", tick))
		return
	}
	s.log.Debug("autosave queued", zap.Uint64("tick", tick))
}
