package command

import (
	"testing"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/data"
	"github.com/deephold/server/internal/world"
)

// rows: '.' air, 'D' dirt, 'X' bedrock.
func stateFromRows(t *testing.T, rows []string) *world.State {
	t.Helper()
	h := len(rows)
	w := len(rows[0])
	types := make([]component.TileType, w*h)
	for y, row := range rows {
		for x, ch := range row {
			switch ch {
			case '.':
				types[y*w+x] = 0
			case 'D':
				types[y*w+x] = 1
			case 'X':
				types[y*w+x] = 5
			default:
				t.Fatalf("unknown terrain char %q", ch)
			}
		}
	}
	return world.New(data.Default(), world.TileGrid{Width: w, Height: h, HorizonY: 0, Types: types}, 1)
}

var speeds = []float64{1, 2, 4}

func TestDigCreatesTask(t *testing.T) {
	s := stateFromRows(t, []string{
		"..",
		"DD",
	})
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 0, Y: 1, Priority: component.PriorityUrgent}})
	id := s.DigTaskAt(0, 1)
	if id.IsZero() {
		t.Fatalf("no dig task created")
	}
	task, _ := s.Tasks.Get(id)
	if task.Priority != component.PriorityUrgent {
		t.Fatalf("priority = %v", task.Priority)
	}
}

func TestDigRejectsAirBedrockAndDuplicates(t *testing.T) {
	s := stateFromRows(t, []string{
		"..",
		"DX",
	})
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 0, Y: 0}})
	if s.Tasks.Len() != 0 {
		t.Fatalf("dig on air created a task")
	}
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 1, Y: 1}})
	if s.Tasks.Len() != 0 {
		t.Fatalf("dig on bedrock created a task")
	}
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 0, Y: 1}})
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 0, Y: 1}})
	if s.Tasks.Len() != 1 {
		t.Fatalf("duplicate dig created %d tasks", s.Tasks.Len())
	}
	// Out-of-bounds target is a silent no-op too.
	Apply(s, speeds, Command{Type: TypeCreateDigTask, Dig: &DigCommand{X: 99, Y: 99}})
	if s.Tasks.Len() != 1 {
		t.Fatalf("out-of-bounds dig created a task")
	}
}

func TestCancelDetachesGnome(t *testing.T) {
	s := stateFromRows(t, []string{
		"..",
		"DD",
	})
	gnome := s.SpawnGnome(0, 0)
	task := s.SpawnDigTask(0, 1, component.PriorityNormal)
	s.AssignTask(task, gnome, []component.PathNode{{X: 1, Y: 0}})

	Apply(s, speeds, Command{Type: TypeCancelTask, Cancel: &CancelCommand{Task: task}})
	if s.Tasks.Has(task) {
		t.Fatalf("cancelled task still exists")
	}
	g, _ := s.Gnomes.Get(gnome)
	if !g.CurrentTask.IsZero() || g.State != component.GnomeIdle || g.HasPath() {
		t.Fatalf("gnome not released: task=%d state=%v", g.CurrentTask, g.State)
	}
}

func TestCancelUnknownTaskIsNoOp(t *testing.T) {
	s := stateFromRows(t, []string{".."})
	Apply(s, speeds, Command{Type: TypeCancelTask, Cancel: &CancelCommand{Task: 999}})
}

func TestCancelIgnoresCollectTask(t *testing.T) {
	s := stateFromRows(t, []string{
		"..",
		"XX",
	})
	res := s.SpawnResource(1, 0, "stone")
	r, _ := s.Resources.Get(res)
	r.Grounded = true
	task := s.SpawnCollectTask(res, 1, 0)

	Apply(s, speeds, Command{Type: TypeCancelTask, Cancel: &CancelCommand{Task: task}})
	if !s.Tasks.Has(task) {
		t.Fatalf("collect task cancelled; its grounded resource has no other way to be picked up")
	}
	tk, _ := s.Tasks.Get(task)
	if tk.TargetEntity != res {
		t.Fatalf("collect task no longer targets its resource")
	}
}

func TestSpeedSelection(t *testing.T) {
	s := stateFromRows(t, []string{".."})
	Apply(s, speeds, Command{Type: TypeSetSpeed, Speed: &SpeedCommand{Index: 2}})
	if s.Speed != 4 {
		t.Fatalf("speed = %v, want 4", s.Speed)
	}
	Apply(s, speeds, Command{Type: TypeSetSpeed, Speed: &SpeedCommand{Index: 7}})
	if s.Speed != 4 {
		t.Fatalf("out-of-range index changed speed to %v", s.Speed)
	}
}

func TestTogglePause(t *testing.T) {
	s := stateFromRows(t, []string{".."})
	Apply(s, speeds, Command{Type: TypeTogglePause})
	if !s.Paused {
		t.Fatalf("not paused after toggle")
	}
	Apply(s, speeds, Command{Type: TypeTogglePause})
	if s.Paused {
		t.Fatalf("still paused after second toggle")
	}
}

func TestSpawnGnomeNeedsPassableTile(t *testing.T) {
	s := stateFromRows(t, []string{
		".D",
	})
	Apply(s, speeds, Command{Type: TypeSpawnGnome, Spawn: &SpawnCommand{X: 0, Y: 0}})
	if s.Gnomes.Len() != 1 {
		t.Fatalf("gnome not spawned on air")
	}
	Apply(s, speeds, Command{Type: TypeSpawnGnome, Spawn: &SpawnCommand{X: 1, Y: 0}})
	if s.Gnomes.Len() != 1 {
		t.Fatalf("gnome spawned inside solid tile")
	}
}

func TestPlaceBuildingValidation(t *testing.T) {
	s := stateFromRows(t, []string{
		".....",
		"...DD",
		"XXXXX",
	})
	// Footprint (2,1)-(3,1): (3,1) is dirt, not passable.
	Apply(s, speeds, Command{Type: TypePlaceBuilding, Build: &BuildCommand{X: 2, Y: 1, Type: "stockpile"}})
	if s.Buildings.Len() != 0 {
		t.Fatalf("building placed over solid terrain")
	}
	// Footprint (0,0)-(1,0): row beneath is (0,1),(1,1), both air.
	Apply(s, speeds, Command{Type: TypePlaceBuilding, Build: &BuildCommand{X: 0, Y: 0, Type: "stockpile"}})
	if s.Buildings.Len() != 0 {
		t.Fatalf("building placed without support")
	}
	// Footprint (0,1)-(1,1): air, supported by bedrock.
	Apply(s, speeds, Command{Type: TypePlaceBuilding, Build: &BuildCommand{X: 0, Y: 1, Type: "stockpile"}})
	if s.Buildings.Len() != 1 {
		t.Fatalf("valid placement rejected")
	}
	// Overlapping a placed building is rejected even on valid terrain.
	Apply(s, speeds, Command{Type: TypePlaceBuilding, Build: &BuildCommand{X: 1, Y: 1, Type: "stockpile"}})
	if s.Buildings.Len() != 1 {
		t.Fatalf("overlapping placement accepted")
	}
	// Unknown building type.
	Apply(s, speeds, Command{Type: TypePlaceBuilding, Build: &BuildCommand{X: 0, Y: 0, Type: "castle"}})
	if s.Buildings.Len() != 1 {
		t.Fatalf("unknown building type accepted")
	}
}

func TestSelectTiles(t *testing.T) {
	s := stateFromRows(t, []string{
		"..",
		"..",
	})
	Apply(s, speeds, Command{Type: TypeSelectTiles, SelectTiles: &SelectTilesCommand{X: 0, Y: 0, W: 2, H: 1}})
	if len(s.Selection.Tiles) != 2 {
		t.Fatalf("selected %d tiles, want 2", len(s.Selection.Tiles))
	}
}

func TestCameraCommands(t *testing.T) {
	s := stateFromRows(t, []string{".."})
	Apply(s, speeds, Command{Type: TypePanCamera, Pan: &PanCommand{DX: 3, DY: -2}})
	if s.Camera.X != 3 || s.Camera.Y != -2 {
		t.Fatalf("camera at (%v,%v)", s.Camera.X, s.Camera.Y)
	}
	Apply(s, speeds, Command{Type: TypeZoomCamera, Zoom: &ZoomCommand{Factor: 2}})
	if s.Camera.Zoom != 2 {
		t.Fatalf("zoom = %v, want 2", s.Camera.Zoom)
	}
	Apply(s, speeds, Command{Type: TypeZoomCamera, Zoom: &ZoomCommand{Factor: -1}})
	if s.Camera.Zoom != 2 {
		t.Fatalf("non-positive zoom factor applied")
	}
}
