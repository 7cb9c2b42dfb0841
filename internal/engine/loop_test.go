package engine

import (
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/command"
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/data"
	"github.com/deephold/server/internal/world"
)

// testWorld is a small colony: open cavern, a dirt seam, bedrock floor, one
// stockpile and two gnomes.
func testWorld(t *testing.T) *world.State {
	t.Helper()
	rows := []string{
		"..........",
		"..........",
		"...DDD....",
		"XXXXXXXXXX",
	}
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
				t.Fatalf("bad terrain char %q", ch)
			}
		}
	}
	ws := world.New(data.Default(), world.TileGrid{Width: w, Height: h, HorizonY: 2, Types: types}, 99)
	ws.SpawnGnome(1, 1)
	ws.SpawnGnome(8, 1)
	ws.SpawnBuilding(7, 1, ws.Defs.Buildings["stockpile"])
	return ws
}

func testLoop(t *testing.T) *Loop {
	return New(testWorld(t), config.Defaults(), zap.NewNop())
}

func digCmd(x, y int) command.Command {
	return command.Command{
		Type: command.TypeCreateDigTask,
		Dig:  &command.DigCommand{X: x, Y: y, Priority: component.PriorityNormal},
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	run := func() *world.Snapshot {
		loop := testLoop(t)
		step := loop.cfg.Sim.TickRate.Std()
		loop.Advance(0, []command.Command{digCmd(3, 2), digCmd(5, 2)})
		for i := 0; i < 600; i++ {
			loop.Advance(step, nil)
		}
		return loop.State().Serialize()
	}
	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two identical runs diverged at tick %d", first.Tick)
	}
	if first.Tick != 600 {
		t.Fatalf("ran %d ticks, want 600", first.Tick)
	}
}

func TestSimulationMakesProgress(t *testing.T) {
	loop := testLoop(t)
	step := loop.cfg.Sim.TickRate.Std()
	loop.Advance(0, []command.Command{digCmd(4, 2)})
	for i := 0; i < 2000; i++ {
		loop.Advance(step, nil)
	}
	if tile := loop.State().TileAt(4, 2); tile.Type == 1 {
		t.Fatalf("dirt at (4,2) never mined after 2000 ticks")
	}
	if loop.State().Tasks.Len() != 0 {
		t.Fatalf("%d tasks still open", loop.State().Tasks.Len())
	}
}

func TestMaxTicksPerFrameCap(t *testing.T) {
	loop := testLoop(t)
	frame := loop.Advance(10*time.Second, nil)
	if got := loop.State().Tick; got != uint64(loop.cfg.Sim.MaxTicksPerFrame) {
		t.Fatalf("tick = %d, want capped at %d", got, loop.cfg.Sim.MaxTicksPerFrame)
	}
	// The backlog is forfeited, not carried.
	if frame.Alpha != 0 {
		t.Fatalf("alpha = %v after a capped frame, want 0", frame.Alpha)
	}
}

func TestAlphaInterpolation(t *testing.T) {
	loop := testLoop(t)
	frame := loop.Advance(loop.cfg.Sim.TickRate.Std()/2, nil)
	if loop.State().Tick != 0 {
		t.Fatalf("half a tick of elapsed time ran %d ticks", loop.State().Tick)
	}
	if frame.Alpha < 0.49 || frame.Alpha > 0.51 {
		t.Fatalf("alpha = %v, want ~0.5", frame.Alpha)
	}
	frame = loop.Advance(loop.cfg.Sim.TickRate.Std(), nil)
	if loop.State().Tick != 1 {
		t.Fatalf("tick = %d, want 1", loop.State().Tick)
	}
	if frame.Alpha < 0 || frame.Alpha >= 1 {
		t.Fatalf("alpha = %v out of [0,1)", frame.Alpha)
	}
}

func TestSpeedMultiplierScalesTicks(t *testing.T) {
	loop := testLoop(t)
	loop.Advance(0, []command.Command{{
		Type:  command.TypeSetSpeed,
		Speed: &command.SpeedCommand{Index: 2}, // x4
	}})
	loop.Advance(loop.cfg.Sim.TickRate.Std(), nil)
	if loop.State().Tick != 4 {
		t.Fatalf("tick = %d at x4 speed, want 4", loop.State().Tick)
	}
}

func TestPausedAppliesCommandsWithoutTicking(t *testing.T) {
	loop := testLoop(t)
	loop.Advance(0, []command.Command{{Type: command.TypeTogglePause}})
	frame := loop.Advance(time.Second, []command.Command{digCmd(3, 2)})
	if loop.State().Tick != 0 {
		t.Fatalf("paused loop advanced to tick %d", loop.State().Tick)
	}
	if loop.State().Tasks.Len() != 1 {
		t.Fatalf("paused loop dropped the command")
	}
	if len(frame.Snapshot.Tasks) != 1 {
		t.Fatalf("frame snapshot missing the queued task")
	}
}

func TestFrameSnapshotIsDetached(t *testing.T) {
	loop := testLoop(t)
	frame := loop.Advance(loop.cfg.Sim.TickRate.Std(), nil)
	before := len(frame.Snapshot.Gnomes)
	loop.State().SpawnGnome(2, 1)
	if len(frame.Snapshot.Gnomes) != before {
		t.Fatalf("frame snapshot tracks live state")
	}
}

func TestWorldSettlesIdentically(t *testing.T) {
	// Two loops stepped tick by tick stay in lockstep the whole way.
	a := testLoop(t)
	b := testLoop(t)
	a.Advance(0, []command.Command{digCmd(3, 2)})
	b.Advance(0, []command.Command{digCmd(3, 2)})
	for i := 0; i < 300; i++ {
		a.Step()
		b.Step()
		if i%50 == 0 {
			sa, sb := a.State().Serialize(), b.State().Serialize()
			if !reflect.DeepEqual(sa, sb) {
				t.Fatalf("lockstep broke at tick %d", i)
			}
		}
	}
}
