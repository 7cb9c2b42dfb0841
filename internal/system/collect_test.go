package system

import (
	"testing"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/event"
)

func TestArrivedDiggerStartsMining(t *testing.T) {
	ws := worldFromRows(t, []string{
		".D",
		"XX",
	})
	sys := NewCollectSystem(ws, testConfig(), event.NewBus(), testLog)

	gnome := ws.SpawnGnome(0, 0)
	task := ws.SpawnDigTask(1, 0, component.PriorityNormal)
	ws.AssignTask(task, gnome, []component.PathNode{})

	sys.Update(0)
	g, _ := ws.Gnomes.Get(gnome)
	if g.State != component.GnomeMining {
		t.Fatalf("state = %v, want mining", g.State)
	}
	if g.CurrentTask != task {
		t.Fatalf("gnome lost its task on arrival")
	}
}

func TestArrivedDiggerTargetGoneCompletes(t *testing.T) {
	ws := worldFromRows(t, []string{
		".D",
		"XX",
	})
	sys := NewCollectSystem(ws, testConfig(), event.NewBus(), testLog)

	gnome := ws.SpawnGnome(0, 0)
	task := ws.SpawnDigTask(1, 0, component.PriorityNormal)
	ws.AssignTask(task, gnome, []component.PathNode{})

	// Another gnome opened the tile first.
	ws.TileAt(1, 0).Type = 0
	sys.Update(0)
	if ws.Tasks.Has(task) {
		t.Fatalf("task for an already-open tile survived")
	}
	g, _ := ws.Gnomes.Get(gnome)
	if g.State != component.GnomeIdle || !g.CurrentTask.IsZero() {
		t.Fatalf("gnome not released: state=%v", g.State)
	}
}

func TestArrivedDiggerOffTargetDetaches(t *testing.T) {
	ws := worldFromRows(t, []string{
		"...D",
		"XXXX",
	})
	sys := NewCollectSystem(ws, testConfig(), event.NewBus(), testLog)

	// A fall left the gnome two tiles from where the route ended.
	gnome := ws.SpawnGnome(0, 0)
	task := ws.SpawnDigTask(3, 0, component.PriorityNormal)
	ws.AssignTask(task, gnome, []component.PathNode{})

	sys.Update(0)
	tk, _ := ws.Tasks.Get(task)
	if !tk.AssignedGnome.IsZero() {
		t.Fatalf("off-target arrival kept the assignment")
	}
	g, _ := ws.Gnomes.Get(gnome)
	if g.State != component.GnomeIdle {
		t.Fatalf("state = %v, want idle", g.State)
	}
}

func TestPickupCollectsResource(t *testing.T) {
	ws := worldFromRows(t, []string{
		"..",
		"XX",
	})
	sys := NewCollectSystem(ws, testConfig(), event.NewBus(), testLog)

	res := ws.SpawnResource(1, 0, "ore")
	r, _ := ws.Resources.Get(res)
	r.Grounded = true
	task := ws.SpawnCollectTask(res, 1, 0)

	gnome := ws.SpawnGnome(1, 0)
	ws.AssignTask(task, gnome, []component.PathNode{})
	g, _ := ws.Gnomes.Get(gnome)
	if g.State != component.GnomeCollecting {
		t.Fatalf("assignment state = %v, want collecting", g.State)
	}

	sys.Update(0)
	if len(g.Inventory) != 1 || g.Inventory[0] != "ore" {
		t.Fatalf("inventory = %v, want [ore]", g.Inventory)
	}
	if ws.Resources.Has(res) {
		t.Fatalf("collected resource still exists")
	}
	if ws.Tasks.Has(task) {
		t.Fatalf("collect task still exists")
	}
	if g.State != component.GnomeIdle {
		t.Fatalf("state = %v, want idle", g.State)
	}
}

func TestPickupAtCapacityDetaches(t *testing.T) {
	ws := worldFromRows(t, []string{
		"..",
		"XX",
	})
	cfg := testConfig()
	sys := NewCollectSystem(ws, cfg, event.NewBus(), testLog)

	res := ws.SpawnResource(1, 0, "ore")
	r, _ := ws.Resources.Get(res)
	r.Grounded = true
	task := ws.SpawnCollectTask(res, 1, 0)

	gnome := ws.SpawnGnome(1, 0)
	g, _ := ws.Gnomes.Get(gnome)
	for i := 0; i < cfg.Sim.CarryCapacity; i++ {
		g.Inventory = append(g.Inventory, "stone")
	}
	ws.AssignTask(task, gnome, []component.PathNode{})

	sys.Update(0)
	if !ws.Resources.Has(res) {
		t.Fatalf("resource consumed past carry capacity")
	}
	tk, _ := ws.Tasks.Get(task)
	if !tk.AssignedGnome.IsZero() {
		t.Fatalf("full gnome kept the collect task")
	}
	if len(g.Inventory) != cfg.Sim.CarryCapacity {
		t.Fatalf("inventory size %d changed", len(g.Inventory))
	}
}

func TestPickupStaleAirborneResource(t *testing.T) {
	ws := worldFromRows(t, []string{
		"..",
		"XX",
	})
	sys := NewCollectSystem(ws, testConfig(), event.NewBus(), testLog)

	res := ws.SpawnResource(1, 0, "ore")
	task := ws.SpawnCollectTask(res, 1, 0)
	// Resource never marked grounded: the task is stale.
	gnome := ws.SpawnGnome(1, 0)
	ws.AssignTask(task, gnome, []component.PathNode{})

	sys.Update(0)
	if ws.Tasks.Has(task) {
		t.Fatalf("stale collect task survived")
	}
	if !ws.Resources.Has(res) {
		t.Fatalf("airborne resource destroyed")
	}
	g, _ := ws.Gnomes.Get(gnome)
	if g.State != component.GnomeIdle || len(g.Inventory) != 0 {
		t.Fatalf("gnome collected an airborne resource")
	}
}
