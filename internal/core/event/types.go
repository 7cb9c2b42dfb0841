package event

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
)

// TileMined fires when a tile's durability reaches zero.
type TileMined struct {
	X, Y int
	Type component.TileType
	By   ecs.EntityID
}

// ResourceGrounded fires on a resource's falling→grounded transition, the
// same transition that generates its collect task.
type ResourceGrounded struct {
	Resource ecs.EntityID
	Type     component.ResourceType
	X, Y     int
}

// TaskCompleted fires when a task finishes (not when it is cancelled).
type TaskCompleted struct {
	Task  ecs.EntityID
	Gnome ecs.EntityID
	Kind  component.TaskKind
}

// Deposited fires when a gnome unloads its inventory into a storage.
type Deposited struct {
	Gnome   ecs.EntityID
	Storage ecs.EntityID
	Count   int
}
