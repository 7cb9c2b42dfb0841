package component

// TileType indexes the tile definition table (internal/data). The simulation
// only ever compares ids; all per-type behavior (passability, mining rate,
// dropped resource) lives in the table.
type TileType uint8

// Tile is the per-grid-cell component. Durability counts down while a gnome
// mines the cell; at zero the tile turns into its table-defined floor type.
type Tile struct {
	Type       TileType `json:"type"`
	Durability float64  `json:"durability"`
}
