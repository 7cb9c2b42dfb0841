package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/deephold/server/internal/command"
	"github.com/deephold/server/internal/component"
)

// TimedCommand is a command scheduled for a specific tick.
type TimedCommand struct {
	Tick uint64
	Cmd  command.Command
}

// Engine wraps a single gopher-lua VM that runs a scenario script.
// The script schedules commands at ticks; the engine collects them up
// front so headless runs stay fully deterministic. Single-goroutine
// access only.
type Engine struct {
	vm   *lua.LState
	log  *zap.Logger
	cmds []TimedCommand
}

// NewEngine creates a Lua engine and runs the given scenario file.
func NewEngine(scriptPath string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.registerAPI()

	if err := vm.DoFile(scriptPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("run scenario %s: %w", scriptPath, err)
	}
	e.log.Debug("scenario loaded",
		zap.String("file", scriptPath),
		zap.Int("commands", len(e.cmds)),
	)
	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Commands returns the scheduled commands sorted by tick. Commands on the
// same tick keep the order the script issued them in.
func (e *Engine) Commands() []TimedCommand {
	out := make([]TimedCommand, len(e.cmds))
	copy(out, e.cmds)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}

// Due returns the commands scheduled at exactly the given tick, assuming
// the caller walks the sorted slice with a cursor.
func Due(cmds []TimedCommand, cursor *int, tick uint64) []command.Command {
	var out []command.Command
	for *cursor < len(cmds) && cmds[*cursor].Tick <= tick {
		out = append(out, cmds[*cursor].Cmd)
		*cursor++
	}
	return out
}

func (e *Engine) schedule(tick uint64, cmd command.Command) {
	e.cmds = append(e.cmds, TimedCommand{Tick: tick, Cmd: cmd})
}

func (e *Engine) registerAPI() {
	e.vm.SetGlobal("dig", e.vm.NewFunction(e.luaDig))
	e.vm.SetGlobal("spawn_gnome", e.vm.NewFunction(e.luaSpawnGnome))
	e.vm.SetGlobal("build", e.vm.NewFunction(e.luaBuild))
	e.vm.SetGlobal("set_speed", e.vm.NewFunction(e.luaSetSpeed))
	e.vm.SetGlobal("toggle_pause", e.vm.NewFunction(e.luaTogglePause))
}

// dig(tick, x, y [, priority])
// priority is one of "low", "normal", "high", "urgent"; default "normal".
func (e *Engine) luaDig(L *lua.LState) int {
	tick := uint64(L.CheckNumber(1))
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	prio := component.PriorityNormal
	if L.GetTop() >= 4 {
		p, ok := parsePriority(L.CheckString(4))
		if !ok {
			L.ArgError(4, "unknown priority")
			return 0
		}
		prio = p
	}
	e.schedule(tick, command.Command{
		Type: command.TypeCreateDigTask,
		Dig:  &command.DigCommand{X: x, Y: y, Priority: prio},
	})
	return 0
}

// spawn_gnome(tick, x, y)
func (e *Engine) luaSpawnGnome(L *lua.LState) int {
	tick := uint64(L.CheckNumber(1))
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	e.schedule(tick, command.Command{
		Type:  command.TypeSpawnGnome,
		Spawn: &command.SpawnCommand{X: x, Y: y},
	})
	return 0
}

// build(tick, x, y, type)
func (e *Engine) luaBuild(L *lua.LState) int {
	tick := uint64(L.CheckNumber(1))
	x := L.CheckInt(2)
	y := L.CheckInt(3)
	bt := L.CheckString(4)
	e.schedule(tick, command.Command{
		Type:  command.TypePlaceBuilding,
		Build: &command.BuildCommand{X: x, Y: y, Type: bt},
	})
	return 0
}

// set_speed(tick, index) selects a speed multiplier slot.
func (e *Engine) luaSetSpeed(L *lua.LState) int {
	tick := uint64(L.CheckNumber(1))
	idx := L.CheckInt(2)
	e.schedule(tick, command.Command{
		Type:  command.TypeSetSpeed,
		Speed: &command.SpeedCommand{Index: idx},
	})
	return 0
}

// toggle_pause(tick)
func (e *Engine) luaTogglePause(L *lua.LState) int {
	tick := uint64(L.CheckNumber(1))
	e.schedule(tick, command.Command{Type: command.TypeTogglePause})
	return 0
}

func parsePriority(s string) (component.Priority, bool) {
	switch s {
	case "low":
		return component.PriorityLow, true
	case "normal":
		return component.PriorityNormal, true
	case "high":
		return component.PriorityHigh, true
	case "urgent":
		return component.PriorityUrgent, true
	}
	return 0, false
}
