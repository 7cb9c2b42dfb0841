package system

import (
	"math"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/path"
	"github.com/deephold/server/internal/rng"
	"github.com/deephold/server/internal/world"
)

// IdleSystem gives unoccupied gnomes something to do: stroll, socialize, or
// rest, drawn from weights through the deterministic generator keyed by
// (seed, gnome id, tick). Behavior starts are throttled on the same tick
// modulo as task assignment; expiry and arrival are checked every tick.
type IdleSystem struct {
	world  *world.State
	cfg    *config.Config
	finder *path.Finder
	log    *zap.Logger
}

func NewIdleSystem(ws *world.State, cfg *config.Config, finder *path.Finder, log *zap.Logger) *IdleSystem {
	return &IdleSystem{world: ws, cfg: cfg, finder: finder, log: log}
}

func (s *IdleSystem) Phase() coresys.Phase { return coresys.PhaseIdle }

func (s *IdleSystem) Update(tick uint64) {
	ws := s.world

	// End behaviors that ran their course. Socialize pairs share one
	// UntilTick, so both clear on the same tick.
	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		if g.Idle == nil {
			continue
		}
		switch g.Idle.Kind {
		case component.IdleStroll:
			if !g.HasPath() {
				clearIdle(ws, id)
			}
		case component.IdleSocialize, component.IdleRest:
			if tick >= g.Idle.UntilTick {
				clearIdle(ws, id)
			}
		}
	}

	if tick%uint64(s.cfg.Idle.Interval) != 0 {
		return
	}

	for _, id := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(id)
		// Idle==nil also excludes gnomes claimed as a socialize
		// partner earlier in this same pass.
		if !unoccupied(g) {
			continue
		}
		r := rng.New(ws.Seed, uint64(id), tick)
		switch r.Pick(s.cfg.IdleWeights()) {
		case 0:
			s.startStroll(id, g, r, tick)
		case 1:
			s.startSocialize(id, g, r, tick)
		default:
			s.startRest(g, r, tick)
		}
	}
}

// startStroll picks a random point in the configured annulus around the
// nearest storage (around the gnome itself when the colony has none) and
// walks there at reduced speed. Falls back to rest when no reachable
// destination turns up within the retry budget.
func (s *IdleSystem) startStroll(id ecs.EntityID, g *component.Gnome, r *rng.Source, tick uint64) {
	ws := s.world
	pos, ok := ws.Positions.Get(id)
	if !ok {
		return
	}
	gx, gy := tileOf(pos)
	cx, cy := s.strollCenter(gx, gy)

	for try := 0; try < s.cfg.Idle.StrollRetries; try++ {
		angle := r.Float64() * 2 * math.Pi
		radius := s.cfg.Idle.StrollMinRadius +
			r.Float64()*(s.cfg.Idle.StrollMaxRadius-s.cfg.Idle.StrollMinRadius)
		tx := cx + int(math.Round(math.Cos(angle)*radius))
		ty := cy + int(math.Round(math.Sin(angle)*radius))
		if !ws.Passable(tx, ty) {
			continue
		}
		route, reachable := s.finder.Route(gx, gy, tx, ty, false, tick)
		if !reachable || len(route) == 0 {
			continue
		}
		g.Idle = &component.IdleBehavior{Kind: component.IdleStroll}
		g.Path = route
		g.PathIndex = 0
		g.State = component.GnomeWalking
		return
	}
	s.startRest(g, r, tick)
}

// strollCenter is the nearest storage anchor by straight-line distance, or
// the gnome's own tile without one.
func (s *IdleSystem) strollCenter(gx, gy int) (int, int) {
	cx, cy := gx, gy
	bestD := math.MaxFloat64
	for _, site := range s.world.StorageSites() {
		dx := float64(site.X - gx)
		dy := float64(site.Y - gy)
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			cx, cy = site.X, site.Y
		}
	}
	return cx, cy
}

// startSocialize pairs the gnome with the nearest other unoccupied gnome in
// range. Both get the same randomized duration and a purely cosmetic
// partner marker. No partner in range degrades to rest.
func (s *IdleSystem) startSocialize(id ecs.EntityID, g *component.Gnome, r *rng.Source, tick uint64) {
	ws := s.world
	pos, ok := ws.Positions.Get(id)
	if !ok {
		return
	}
	maxD := s.cfg.Idle.SocializeRange * s.cfg.Idle.SocializeRange
	var partner ecs.EntityID
	var partnerGnome *component.Gnome
	bestD := math.MaxFloat64
	for _, otherID := range ws.Gnomes.IDs() {
		if otherID == id {
			continue
		}
		other, _ := ws.Gnomes.Get(otherID)
		if !unoccupied(other) {
			continue
		}
		opos, ok := ws.Positions.Get(otherID)
		if !ok {
			continue
		}
		dx := opos.X - pos.X
		dy := opos.Y - pos.Y
		d := dx*dx + dy*dy
		if d <= maxD && d < bestD {
			bestD = d
			partner = otherID
			partnerGnome = other
		}
	}
	until := tick + uint64(r.Range(s.cfg.Idle.MinDuration, s.cfg.Idle.MaxDuration))
	if partner.IsZero() {
		g.Idle = &component.IdleBehavior{Kind: component.IdleRest, UntilTick: until}
		return
	}
	g.Idle = &component.IdleBehavior{Kind: component.IdleSocialize, UntilTick: until, Partner: partner}
	partnerGnome.Idle = &component.IdleBehavior{Kind: component.IdleSocialize, UntilTick: until, Partner: id}
}

func (s *IdleSystem) startRest(g *component.Gnome, r *rng.Source, tick uint64) {
	g.Idle = &component.IdleBehavior{
		Kind:      component.IdleRest,
		UntilTick: tick + uint64(r.Range(s.cfg.Idle.MinDuration, s.cfg.Idle.MaxDuration)),
	}
}
