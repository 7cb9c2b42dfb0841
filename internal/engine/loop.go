// Package engine drives the fixed-step simulation loop: drain commands,
// convert elapsed real time into logical ticks, run the system pipeline,
// and hand the caller a render frame.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/command"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/event"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/path"
	"github.com/deephold/server/internal/system"
	"github.com/deephold/server/internal/world"
)

// Frame is what the presentation layer gets once per real frame: a read-only
// deep-copied snapshot plus the interpolation fraction in [0,1) between the
// last applied tick and the next.
type Frame struct {
	Snapshot *world.Snapshot
	Alpha    float64
}

// Loop owns the tick scheduler and the assembled system pipeline.
type Loop struct {
	state  *world.State
	cfg    *config.Config
	runner *coresys.Runner
	bus    *event.Bus
	finder *path.Finder
	log    *zap.Logger
	accum  time.Duration
}

// New assembles the standard pipeline around a world state.
func New(ws *world.State, cfg *config.Config, log *zap.Logger) *Loop {
	bus := event.NewBus()
	finder := path.NewFinder(ws, cfg.Path.CacheSize, cfg.Path.CacheTTL)

	runner := coresys.NewRunner()
	runner.Register(system.NewPhysicsSystem(ws, cfg, bus, log))
	runner.Register(system.NewDepositSystem(ws, cfg, finder, bus, log))
	runner.Register(system.NewAssignSystem(ws, cfg, finder, log))
	runner.Register(system.NewMiningSystem(ws, cfg, finder, bus, log))
	runner.Register(system.NewCollectSystem(ws, cfg, bus, log))
	runner.Register(system.NewIdleSystem(ws, cfg, finder, log))
	runner.Register(system.NewCleanupSystem(ws, cfg, log))

	return &Loop{
		state:  ws,
		cfg:    cfg,
		runner: runner,
		bus:    bus,
		finder: finder,
		log:    log,
	}
}

// State exposes the live world. Callers outside the loop goroutine must use
// frame snapshots instead.
func (l *Loop) State() *world.State { return l.state }

// Bus exposes the observability event bus for subscriptions.
func (l *Loop) Bus() *event.Bus { return l.bus }

// AttachAutosave registers the autosave system with the given sink.
func (l *Loop) AttachAutosave(sink system.SnapshotSink) {
	l.runner.Register(system.NewAutosaveSystem(l.state, sink, l.cfg.Sim.AutosaveTicks, l.log))
}

// Advance processes one real frame: commands first (always, even while
// paused), then as many logical ticks as elapsed time× speed allows, capped
// by max_ticks_per_frame so high speed multipliers and slow frames cannot
// spiral into runaway catch-up.
func (l *Loop) Advance(elapsed time.Duration, cmds []command.Command) Frame {
	for _, c := range cmds {
		command.Apply(l.state, l.cfg.Sim.SpeedMultipliers, c)
	}

	rate := l.cfg.Sim.TickRate.Std()
	if !l.state.Paused {
		l.accum += time.Duration(float64(elapsed) * l.state.Speed)
		ticks := int(l.accum / rate)
		if ticks > l.cfg.Sim.MaxTicksPerFrame {
			ticks = l.cfg.Sim.MaxTicksPerFrame
			l.accum = 0 // forfeit the backlog instead of chasing it
		} else {
			l.accum -= time.Duration(ticks) * rate
		}
		for i := 0; i < ticks; i++ {
			l.Step()
		}
	}

	alpha := float64(l.accum) / float64(rate)
	if alpha < 0 || alpha >= 1 {
		alpha = 0
	}
	return Frame{Snapshot: l.state.Serialize(), Alpha: alpha}
}

// Step runs exactly one logical tick. Events emitted last tick dispatch at
// tick start; then the pipeline runs in fixed phase order.
func (l *Loop) Step() {
	l.bus.SwapBuffers()
	l.bus.DispatchAll()
	l.runner.Tick(l.state.Tick)
	l.state.Tick++
}
