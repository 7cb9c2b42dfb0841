// Package system contains the simulation pipeline: one file per system, all
// executing in fixed phase order against the shared world state. Systems run
// strictly sequentially on the loop goroutine; every store scan goes through
// ascending-id iteration so no outcome depends on map order.
package system

import (
	"math"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
	"github.com/deephold/server/internal/world"
)

// tileOf maps a continuous position to its tile cell (nearest tile).
func tileOf(p *component.Position) (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// clearIdle ends a gnome's idle behavior, unpairing a socialize partner so
// no one is left pointing at a gnome that walked away. A strolling gnome
// stops where it is.
func clearIdle(ws *world.State, id ecs.EntityID) {
	g, ok := ws.Gnomes.Get(id)
	if !ok || g.Idle == nil {
		return
	}
	partner := g.Idle.Partner
	g.Idle = nil
	if g.State == component.GnomeWalking && g.CurrentTask.IsZero() {
		g.ClearPath()
		g.State = component.GnomeIdle
	}
	if !partner.IsZero() {
		if p, ok := ws.Gnomes.Get(partner); ok && p.Idle != nil && p.Idle.Partner == id {
			p.Idle = nil
		}
	}
}

// unoccupied reports whether a gnome is free for new engagement: idle state,
// no task, no idle behavior.
func unoccupied(g *component.Gnome) bool {
	return g.State == component.GnomeIdle && g.CurrentTask.IsZero() && g.Idle == nil
}
