package system

import (
	"testing"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/data"
	"github.com/deephold/server/internal/world"
)

// worldFromRows builds a test world from terrain strings:
// '.' air, 'D' dirt, 'S' stone, 'O' ore, 'X' bedrock.
func worldFromRows(t *testing.T, rows []string) *world.State {
	t.Helper()
	h := len(rows)
	w := len(rows[0])
	types := make([]component.TileType, w*h)
	for y, row := range rows {
		if len(row) != w {
			t.Fatalf("row %d has width %d, want %d", y, len(row), w)
		}
		for x, ch := range row {
			var tt component.TileType
			switch ch {
			case '.':
				tt = 0
			case 'D':
				tt = 1
			case 'S':
				tt = 2
			case 'O':
				tt = 3
			case 'X':
				tt = 5
			default:
				t.Fatalf("unknown terrain char %q", ch)
			}
			types[y*w+x] = tt
		}
	}
	return world.New(data.Default(), world.TileGrid{Width: w, Height: h, HorizonY: 0, Types: types}, 1)
}

func testConfig() *config.Config {
	return config.Defaults()
}

var testLog = zap.NewNop()
