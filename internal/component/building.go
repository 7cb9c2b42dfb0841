package component

// Building occupies a rectangular tile footprint anchored at its Position
// (top-left corner). Footprint tiles stay passable; buildings never block
// movement.
type Building struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Storage accumulates deposited resources with unlimited capacity.
type Storage struct {
	Contents map[ResourceType]int `json:"contents"`
}

func NewStorage() *Storage {
	return &Storage{Contents: make(map[ResourceType]int)}
}
