package component

import "github.com/deephold/server/internal/core/ecs"

// TaskKind distinguishes the two assignable work units.
type TaskKind uint8

const (
	TaskDig TaskKind = iota
	TaskCollect
)

func (k TaskKind) String() string {
	if k == TaskCollect {
		return "collect"
	}
	return "dig"
}

// Priority orders task buckets. Higher value = scanned first.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p Priority) String() string {
	switch p {
	case PriorityUrgent:
		return "urgent"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	}
	return "low"
}

// Task is an assignable unit of work targeting a tile. Collect tasks also
// reference the resource entity they were generated for.
//
// AssignedGnome and the gnome's CurrentTask are a bidirectional pair: both
// sides are always written together, in the same system step.
type Task struct {
	Kind      TaskKind `json:"kind"`
	TargetX   int      `json:"target_x"`
	TargetY   int      `json:"target_y"`
	Priority  Priority `json:"priority"`
	CreatedAt uint64   `json:"created_at"` // tick of creation; FIFO tie-break

	AssignedGnome ecs.EntityID `json:"assigned_gnome,omitempty"`
	Progress      float64      `json:"progress"`
	TargetEntity  ecs.EntityID `json:"target_entity,omitempty"`

	// UnreachableCount is a presentation hint: how often assignment failed
	// to route a gnome here. Never removes the task.
	UnreachableCount int `json:"unreachable_count"`
}
