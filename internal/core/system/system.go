package system

// Phase defines execution ordering within a single tick. The pipeline order
// is fixed: gravity resolves before deposits, deposits before assignment (so
// gnomes unload before taking new work), and cleanup always runs last.
type Phase int

const (
	PhasePhysics Phase = iota // 0: gravity + movement for gnomes and resources
	PhaseDeposit              // 1: inventory transfer into storages
	PhaseAssign               // 2: task assignment (throttled)
	PhaseMining               // 3: durability reduction, tile break, resource spawn
	PhaseCollect              // 4: arrival resolution for collect/dig travel
	PhaseIdle                 // 5: stroll/socialize/rest behaviors
	PhasePersist              // 6: autosave snapshot handoff
	PhaseCleanup              // 7: destroy queued entities, bounds cleanup
)

// System is the interface every pipeline system implements. Update receives
// the current tick number; fixed-step simulation has no frame delta.
type System interface {
	Phase() Phase
	Update(tick uint64)
}
