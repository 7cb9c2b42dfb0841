package component

import "github.com/deephold/server/internal/core/ecs"

// GnomeState is the agent state machine. States are mutually exclusive;
// every transition happens inside exactly one pipeline system per tick.
type GnomeState uint8

const (
	GnomeIdle GnomeState = iota
	GnomeWalking
	GnomeMining
	GnomeFalling
	GnomeCollecting
	GnomeDepositing
)

func (s GnomeState) String() string {
	switch s {
	case GnomeIdle:
		return "idle"
	case GnomeWalking:
		return "walking"
	case GnomeMining:
		return "mining"
	case GnomeFalling:
		return "falling"
	case GnomeCollecting:
		return "collecting"
	case GnomeDepositing:
		return "depositing"
	}
	return "unknown"
}

// IdleKind tags the non-work activity of an otherwise unoccupied gnome.
type IdleKind uint8

const (
	IdleStroll IdleKind = iota
	IdleSocialize
	IdleRest
)

// IdleBehavior is present only while a gnome is performing an idle activity.
// A real task assignment clears it unconditionally in the same tick.
type IdleBehavior struct {
	Kind IdleKind `json:"kind"`
	// UntilTick ends socialize and rest. Strolls end on arrival instead.
	UntilTick uint64 `json:"until_tick"`
	// Partner is the paired gnome while socializing, zero otherwise.
	Partner ecs.EntityID `json:"partner,omitempty"`
}

// Gnome is the colonist agent component.
type Gnome struct {
	State       GnomeState     `json:"state"`
	CurrentTask ecs.EntityID   `json:"current_task,omitempty"`
	Path        []PathNode     `json:"path,omitempty"`
	PathIndex   int            `json:"path_index"`
	Inventory   []ResourceType `json:"inventory"`
	Idle        *IdleBehavior  `json:"idle,omitempty"`
}

// HasPath reports whether the gnome still has route nodes left to walk.
func (g *Gnome) HasPath() bool {
	return g.PathIndex < len(g.Path)
}

// ClearPath drops the current route.
func (g *Gnome) ClearPath() {
	g.Path = nil
	g.PathIndex = 0
}
