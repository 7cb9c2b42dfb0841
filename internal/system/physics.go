package system

import (
	"math"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/core/event"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/world"
)

// PhysicsSystem integrates gravity for gnomes and loose resources and moves
// route-following gnomes. The two integrators share the gravity constants
// but run distinct state machines: gnomes cycle through the full agent
// states, resources only know falling and grounded.
type PhysicsSystem struct {
	world *world.State
	cfg   *config.Config
	bus   *event.Bus
	log   *zap.Logger
}

func NewPhysicsSystem(ws *world.State, cfg *config.Config, bus *event.Bus, log *zap.Logger) *PhysicsSystem {
	return &PhysicsSystem{world: ws, cfg: cfg, bus: bus, log: log}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(tick uint64) {
	s.updateGnomes()
	s.updateResources()
}

func (s *PhysicsSystem) updateGnomes() {
	ws := s.world
	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		pos, ok := ws.Positions.Get(id)
		if !ok {
			continue
		}
		vel, ok := ws.Velocities.Get(id)
		if !ok {
			vel = &component.Velocity{}
			ws.Velocities.Set(id, vel)
		}

		if g.State == component.GnomeFalling {
			if s.fall(id, pos, vel) {
				g.State = component.GnomeIdle
			}
			continue
		}

		// Support check. Gnomes actively walking a route are exempt:
		// routes may legally pass through open air (4-connectivity),
		// and the fall is applied once the route ends.
		gx, gy := tileOf(pos)
		if !g.HasPath() && !ws.Solid(gx, gy+1) {
			s.startFalling(id, g)
			continue
		}

		if g.HasPath() {
			s.walk(g, pos)
		}
	}
}

// startFalling interrupts whatever the gnome was doing. Its task, if any,
// returns to the unassigned pool.
func (s *PhysicsSystem) startFalling(id ecs.EntityID, g *component.Gnome) {
	if !g.CurrentTask.IsZero() {
		s.world.DetachTask(g.CurrentTask)
	}
	clearIdle(s.world, id)
	g.ClearPath()
	g.State = component.GnomeFalling
}

// fall advances one gravity step and reports whether the entity landed.
func (s *PhysicsSystem) fall(id ecs.EntityID, pos *component.Position, vel *component.Velocity) bool {
	vel.DY += s.cfg.Physics.Gravity
	if vel.DY > s.cfg.Physics.TerminalVelocity {
		vel.DY = s.cfg.Physics.TerminalVelocity
	}
	newY := pos.Y + vel.DY

	x, _ := tileOf(pos)
	// First row at or below the entity whose cell beneath is solid.
	row := int(math.Ceil(pos.Y))
	for row < s.world.Height && !s.world.Solid(x, row+1) {
		row++
	}
	if row < s.world.Height && newY >= float64(row) {
		pos.Y = float64(row)
		vel.DY = 0
		return true
	}
	pos.Y = newY
	return false
}

// walk advances a gnome along its route. Stroll travel uses the reduced
// speed multiplier; task travel uses full walking speed.
func (s *PhysicsSystem) walk(g *component.Gnome, pos *component.Position) {
	speed := s.cfg.Physics.WalkSpeed
	if g.Idle != nil && g.Idle.Kind == component.IdleStroll {
		speed *= s.cfg.Physics.StrollFactor
	}

	remaining := speed
	for remaining > 0 && g.HasPath() {
		node := g.Path[g.PathIndex]
		dx := float64(node.X) - pos.X
		dy := float64(node.Y) - pos.Y
		dist := math.Abs(dx) + math.Abs(dy)
		if dist <= remaining {
			pos.X = float64(node.X)
			pos.Y = float64(node.Y)
			g.PathIndex++
			remaining -= dist
			continue
		}
		// Route nodes differ along one axis; move along it and stop.
		if dx != 0 {
			pos.X += math.Copysign(remaining, dx)
		} else {
			pos.Y += math.Copysign(remaining, dy)
		}
		remaining = 0
	}
	if !g.HasPath() {
		g.ClearPath()
	}
}

func (s *PhysicsSystem) updateResources() {
	ws := s.world
	for _, id := range ws.Resources.IDs() {
		res, _ := ws.Resources.Get(id)
		pos, ok := ws.Positions.Get(id)
		if !ok {
			continue
		}
		vel, ok := ws.Velocities.Get(id)
		if !ok {
			vel = &component.Velocity{}
			ws.Velocities.Set(id, vel)
		}

		if res.Grounded {
			// Immobile until the support tile is removed.
			x, y := tileOf(pos)
			if !ws.Solid(x, y+1) {
				res.Grounded = false
				if t := ws.CollectTaskFor(id); !t.IsZero() {
					ws.RemoveTask(t)
				}
			}
			continue
		}

		if s.fall(id, pos, vel) {
			res.Grounded = true
			x, y := tileOf(pos)
			// The grounding transition is the sole trigger for
			// collect-task generation: exactly one per resource.
			if ws.CollectTaskFor(id).IsZero() {
				ws.SpawnCollectTask(id, x, y)
			}
			event.Emit(s.bus, event.ResourceGrounded{
				Resource: id,
				Type:     res.Type,
				X:        x,
				Y:        y,
			})
			s.log.Debug("resource grounded",
				zap.Uint64("resource", uint64(id)),
				zap.String("type", string(res.Type)),
				zap.Int("x", x),
				zap.Int("y", y),
			)
		}
	}
}
