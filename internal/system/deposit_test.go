package system

import (
	"testing"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/core/event"
	"github.com/deephold/server/internal/path"
)

func TestDepositDispatchesLoadedGnome(t *testing.T) {
	ws := worldFromRows(t, []string{
		".....",
		"XXXXX",
	})
	cfg := testConfig()
	finder := path.NewFinder(ws, cfg.Path.CacheSize, cfg.Path.CacheTTL)
	sys := NewDepositSystem(ws, cfg, finder, event.NewBus(), testLog)

	ws.SpawnBuilding(3, 0, ws.Defs.Buildings["stockpile"])
	gnome := ws.SpawnGnome(0, 0)
	g, _ := ws.Gnomes.Get(gnome)
	g.Inventory = append(g.Inventory, "stone")

	sys.Update(0)
	if g.State != component.GnomeDepositing {
		t.Fatalf("state = %v, want depositing", g.State)
	}
	if !g.HasPath() {
		t.Fatalf("dispatched gnome has no route")
	}
	// Nearest footprint tile is (3,0): three steps.
	if len(g.Path) != 3 {
		t.Fatalf("route length = %d, want 3", len(g.Path))
	}
}

func TestDepositTransfersOnArrival(t *testing.T) {
	ws := worldFromRows(t, []string{
		"....",
		"XXXX",
	})
	cfg := testConfig()
	finder := path.NewFinder(ws, cfg.Path.CacheSize, cfg.Path.CacheTTL)
	sys := NewDepositSystem(ws, cfg, finder, event.NewBus(), testLog)

	storage := ws.SpawnBuilding(2, 0, ws.Defs.Buildings["stockpile"])
	gnome := ws.SpawnGnome(2, 0)
	g, _ := ws.Gnomes.Get(gnome)
	g.Inventory = append(g.Inventory, "stone", "stone", "ore")
	g.State = component.GnomeDepositing

	sys.Update(0)
	if len(g.Inventory) != 0 {
		t.Fatalf("inventory not emptied: %v", g.Inventory)
	}
	if g.State != component.GnomeIdle {
		t.Fatalf("state = %v, want idle", g.State)
	}
	st, _ := ws.Storages.Get(storage)
	if st.Contents["stone"] != 2 || st.Contents["ore"] != 1 {
		t.Fatalf("storage contents = %v", st.Contents)
	}
}

func TestDepositWithoutStorageHolds(t *testing.T) {
	ws := worldFromRows(t, []string{
		"...",
		"XXX",
	})
	cfg := testConfig()
	finder := path.NewFinder(ws, cfg.Path.CacheSize, cfg.Path.CacheTTL)
	sys := NewDepositSystem(ws, cfg, finder, event.NewBus(), testLog)

	gnome := ws.SpawnGnome(0, 0)
	g, _ := ws.Gnomes.Get(gnome)
	g.Inventory = append(g.Inventory, "stone")

	sys.Update(0)
	if g.State != component.GnomeIdle {
		t.Fatalf("state = %v, want idle (nowhere to deposit)", g.State)
	}
	if len(g.Inventory) != 1 {
		t.Fatalf("inventory changed with no storage present")
	}
}

func TestDepositRunsBeforeAssignment(t *testing.T) {
	dep := NewDepositSystem(nil, testConfig(), nil, event.NewBus(), testLog)
	asn := NewAssignSystem(nil, testConfig(), nil, testLog)
	if dep.Phase() >= asn.Phase() {
		t.Fatalf("deposit phase %d not before assign phase %d", dep.Phase(), asn.Phase())
	}
}
