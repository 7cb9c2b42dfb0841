// Package data loads the static definition tables the simulation is driven
// by: tile types and building types. Tables are authored in YAML; a default
// set is embedded so the engine runs without any data directory.
package data

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/deephold/server/internal/component"
)

//go:embed yaml/tile_list.yaml
var defaultTiles []byte

//go:embed yaml/building_list.yaml
var defaultBuildings []byte

// TileDef holds static data for one tile type.
type TileDef struct {
	ID             uint8   `yaml:"id"`
	Name           string  `yaml:"name"`
	Passable       bool    `yaml:"passable"`
	Indestructible bool    `yaml:"indestructible"`
	Durability     float64 `yaml:"durability"`
	MineRate       float64 `yaml:"mine_rate"` // durability removed per active-mining tick
	MoveCost       float64 `yaml:"move_cost"` // pathfinding cost per traversed tile
	Drop           string  `yaml:"drop"`      // resource type spawned at zero durability, "" = none
}

// BuildingDef holds static data for one placeable building type.
type BuildingDef struct {
	Type    string `yaml:"type"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Storage bool   `yaml:"storage"` // building accumulates deposited resources
}

type tileListFile struct {
	Tiles []TileDef `yaml:"tiles"`
}

type buildingListFile struct {
	Buildings []BuildingDef `yaml:"buildings"`
}

// Tables bundles every definition table, indexed for lookup.
type Tables struct {
	Tiles     map[component.TileType]TileDef
	Buildings map[string]BuildingDef

	// FloorType is what a mined-out tile becomes: the lowest-id passable,
	// non-drop tile type (conventionally "air").
	FloorType component.TileType
}

// Default returns the embedded definition tables. Panics only on a broken
// build (the embedded YAML failing to parse is a compile-time data bug).
func Default() *Tables {
	t, err := parse(defaultTiles, defaultBuildings)
	if err != nil {
		panic(fmt.Sprintf("embedded tables: %v", err))
	}
	return t
}

// Load reads tables from the given YAML files, falling back to the embedded
// table when a path is empty.
func Load(tilePath, buildingPath string) (*Tables, error) {
	tiles := defaultTiles
	if tilePath != "" {
		raw, err := os.ReadFile(tilePath)
		if err != nil {
			return nil, fmt.Errorf("read tile list %s: %w", tilePath, err)
		}
		tiles = raw
	}
	buildings := defaultBuildings
	if buildingPath != "" {
		raw, err := os.ReadFile(buildingPath)
		if err != nil {
			return nil, fmt.Errorf("read building list %s: %w", buildingPath, err)
		}
		buildings = raw
	}
	return parse(tiles, buildings)
}

func parse(tileRaw, buildingRaw []byte) (*Tables, error) {
	var tf tileListFile
	if err := yaml.Unmarshal(tileRaw, &tf); err != nil {
		return nil, fmt.Errorf("parse tile list: %w", err)
	}
	var bf buildingListFile
	if err := yaml.Unmarshal(buildingRaw, &bf); err != nil {
		return nil, fmt.Errorf("parse building list: %w", err)
	}
	if len(tf.Tiles) == 0 {
		return nil, fmt.Errorf("tile list is empty")
	}

	t := &Tables{
		Tiles:     make(map[component.TileType]TileDef, len(tf.Tiles)),
		Buildings: make(map[string]BuildingDef, len(bf.Buildings)),
	}
	floorFound := false
	for _, def := range tf.Tiles {
		id := component.TileType(def.ID)
		if _, dup := t.Tiles[id]; dup {
			return nil, fmt.Errorf("duplicate tile id %d (%s)", def.ID, def.Name)
		}
		if def.MoveCost <= 0 {
			def.MoveCost = 1
		}
		t.Tiles[id] = def
		if !floorFound && def.Passable && def.Drop == "" {
			t.FloorType = id
			floorFound = true
		}
	}
	if !floorFound {
		return nil, fmt.Errorf("tile list has no passable floor type")
	}
	for _, def := range bf.Buildings {
		if def.Width <= 0 || def.Height <= 0 {
			return nil, fmt.Errorf("building %q has empty footprint", def.Type)
		}
		t.Buildings[def.Type] = def
	}
	return t, nil
}

// Tile looks up a tile definition. Unknown ids resolve to an indestructible,
// impassable placeholder so corrupt saves degrade safely instead of crashing.
func (t *Tables) Tile(tt component.TileType) TileDef {
	if def, ok := t.Tiles[tt]; ok {
		return def
	}
	return TileDef{ID: uint8(tt), Name: "unknown", Indestructible: true, MoveCost: 1}
}

// Passable reports whether a tile type can be walked through.
func (t *Tables) Passable(tt component.TileType) bool {
	return t.Tile(tt).Passable
}

// Diggable reports whether a dig task may target this tile type.
func (t *Tables) Diggable(tt component.TileType) bool {
	def := t.Tile(tt)
	return !def.Passable && !def.Indestructible
}
