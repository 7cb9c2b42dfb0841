// Package command defines the player-intent stream and its reducer. Commands
// form a tagged union consumed strictly FIFO; invalid commands are silent
// no-ops, never errors — the simulation core does not raise for ordinary
// gameplay situations.
package command

import (
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/ecs"
)

// Type enumerates the supported command kinds.
type Type uint8

const (
	TypeSelectTiles Type = iota
	TypeSelectGnomes
	TypeCreateDigTask
	TypeCancelTask
	TypePanCamera
	TypeZoomCamera
	TypeSetSpeed
	TypeTogglePause
	TypeSpawnGnome
	TypePlaceBuilding
)

// Command carries exactly one populated variant, chosen by Type.
type Command struct {
	Type Type

	SelectTiles  *SelectTilesCommand
	SelectGnomes *SelectGnomesCommand
	Dig          *DigCommand
	Cancel       *CancelCommand
	Pan          *PanCommand
	Zoom         *ZoomCommand
	Speed        *SpeedCommand
	Spawn        *SpawnCommand
	Build        *BuildCommand
}

// SelectTilesCommand selects the tile entities inside a rectangle.
type SelectTilesCommand struct {
	X, Y, W, H int
}

// SelectGnomesCommand selects gnome entities by id.
type SelectGnomesCommand struct {
	Gnomes []ecs.EntityID
}

// DigCommand requests a dig task on the targeted tile.
type DigCommand struct {
	X, Y     int
	Priority component.Priority
}

// CancelCommand cancels a task by entity id.
type CancelCommand struct {
	Task ecs.EntityID
}

// PanCommand moves the camera by a tile-space delta.
type PanCommand struct {
	DX, DY float64
}

// ZoomCommand scales the camera zoom by a factor.
type ZoomCommand struct {
	Factor float64
}

// SpeedCommand selects an entry of the configured speed-multiplier set.
type SpeedCommand struct {
	Index int
}

// SpawnCommand places a new gnome on the targeted tile.
type SpawnCommand struct {
	X, Y int
}

// BuildCommand places a building anchored (top-left) at the targeted tile.
type BuildCommand struct {
	X, Y int
	Type string
}
