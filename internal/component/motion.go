package component

// Position is a location in tile space. Whole numbers are tile corners;
// entities sit at fractional coordinates while moving or falling.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Velocity is tile-space displacement per tick. Only falling entities and
// walking gnomes carry a meaningful velocity.
type Velocity struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PathNode is one tile along a computed route.
type PathNode struct {
	X int `json:"x"`
	Y int `json:"y"`
}
