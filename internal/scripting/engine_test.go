package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/command"
	"github.com/deephold/server/internal/component"
)

func loadScenario(t *testing.T, script string) *Engine {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(p, []byte(script), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	e, err := NewEngine(p, zap.NewNop())
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestScenarioCommandsSortedByTick(t *testing.T) {
	e := loadScenario(t, `
dig(100, 3, 4, "urgent")
spawn_gnome(0, 1, 1)
build(50, 2, 2, "stockpile")
set_speed(20, 2)
toggle_pause(20)
`)
	cmds := e.Commands()
	if len(cmds) != 5 {
		t.Fatalf("got %d commands, want 5", len(cmds))
	}
	wantTicks := []uint64{0, 20, 20, 50, 100}
	for i, want := range wantTicks {
		if cmds[i].Tick != want {
			t.Fatalf("command %d at tick %d, want %d", i, cmds[i].Tick, want)
		}
	}
	// Same tick keeps script order: set_speed was issued before toggle_pause.
	if cmds[1].Cmd.Type != command.TypeSetSpeed || cmds[2].Cmd.Type != command.TypeTogglePause {
		t.Fatalf("same-tick commands reordered: %v then %v", cmds[1].Cmd.Type, cmds[2].Cmd.Type)
	}

	dig := cmds[4].Cmd
	if dig.Type != command.TypeCreateDigTask || dig.Dig == nil {
		t.Fatalf("last command = %+v, want a dig", dig)
	}
	if dig.Dig.X != 3 || dig.Dig.Y != 4 || dig.Dig.Priority != component.PriorityUrgent {
		t.Fatalf("dig payload = %+v", dig.Dig)
	}
}

func TestScenarioLuaLoops(t *testing.T) {
	e := loadScenario(t, `
for d = 0, 4 do
  dig(10 + d, 7, 3 + d)
end
`)
	cmds := e.Commands()
	if len(cmds) != 5 {
		t.Fatalf("got %d commands, want 5", len(cmds))
	}
	for i, tc := range cmds {
		if tc.Cmd.Dig.Y != 3+i {
			t.Fatalf("command %d digs y=%d, want %d", i, tc.Cmd.Dig.Y, 3+i)
		}
		if tc.Cmd.Dig.Priority != component.PriorityNormal {
			t.Fatalf("default priority = %v, want normal", tc.Cmd.Dig.Priority)
		}
	}
}

func TestScenarioBadPriorityFails(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.lua")
	if err := os.WriteFile(p, []byte(`dig(0, 1, 1, "asap")`), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	if _, err := NewEngine(p, zap.NewNop()); err == nil {
		t.Fatalf("unknown priority accepted")
	}
}

func TestDueCursor(t *testing.T) {
	cmds := []TimedCommand{
		{Tick: 0, Cmd: command.Command{Type: command.TypeTogglePause}},
		{Tick: 5, Cmd: command.Command{Type: command.TypeTogglePause}},
		{Tick: 5, Cmd: command.Command{Type: command.TypeTogglePause}},
		{Tick: 9, Cmd: command.Command{Type: command.TypeTogglePause}},
	}
	cursor := 0
	if got := Due(cmds, &cursor, 0); len(got) != 1 {
		t.Fatalf("tick 0 due = %d commands, want 1", len(got))
	}
	if got := Due(cmds, &cursor, 4); len(got) != 0 {
		t.Fatalf("tick 4 due = %d commands, want 0", len(got))
	}
	if got := Due(cmds, &cursor, 5); len(got) != 2 {
		t.Fatalf("tick 5 due = %d commands, want 2", len(got))
	}
	if got := Due(cmds, &cursor, 100); len(got) != 1 {
		t.Fatalf("catch-up due = %d commands, want 1", len(got))
	}
	if cursor != len(cmds) {
		t.Fatalf("cursor = %d, want %d", cursor, len(cmds))
	}
}
