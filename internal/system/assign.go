package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/ecs"
	coresys "github.com/deephold/server/internal/core/system"
	"github.com/deephold/server/internal/path"
	"github.com/deephold/server/internal/world"
)

// AssignSystem matches idle gnomes to unassigned tasks. Throttled to every
// N ticks. Tasks are scanned in priority buckets (urgent first); within the
// first bucket holding a reachable candidate the gnome takes the one with
// the shortest route, never falling through to a lower bucket merely because
// it has a nearer task. Ties (equal priority, equal route length) break by
// earliest creation tick, then lower task id.
type AssignSystem struct {
	world  *world.State
	cfg    *config.Config
	finder *path.Finder
	log    *zap.Logger
}

func NewAssignSystem(ws *world.State, cfg *config.Config, finder *path.Finder, log *zap.Logger) *AssignSystem {
	return &AssignSystem{world: ws, cfg: cfg, finder: finder, log: log}
}

func (s *AssignSystem) Phase() coresys.Phase { return coresys.PhaseAssign }

func (s *AssignSystem) Update(tick uint64) {
	if tick%uint64(s.cfg.Tasks.AssignInterval) != 0 {
		return
	}
	ws := s.world

	buckets := s.taskBuckets()
	for _, gnomeID := range ws.Gnomes.IDs() {
		g, _ := ws.Gnomes.Get(gnomeID)
		// Gnomes with an active idle behavior remain eligible: a real
		// assignment pre-empts the behavior the same tick.
		if g.State != component.GnomeIdle && !(g.State == component.GnomeWalking && g.CurrentTask.IsZero()) {
			continue
		}
		if !g.CurrentTask.IsZero() {
			continue
		}
		s.assignOne(gnomeID, g, buckets, tick)
	}
}

// taskBuckets partitions unassigned tasks by priority, each bucket ordered
// by (CreatedAt, id) so the FIFO tie-break falls out of scan order.
func (s *AssignSystem) taskBuckets() [4][]ecs.EntityID {
	var buckets [4][]ecs.EntityID
	s.world.Tasks.Each(func(id ecs.EntityID, t *component.Task) {
		if t.AssignedGnome.IsZero() {
			buckets[t.Priority] = append(buckets[t.Priority], id)
		}
	})
	for p := range buckets {
		tasks := s.world.Tasks
		sort.SliceStable(buckets[p], func(i, j int) bool {
			a, _ := tasks.Get(buckets[p][i])
			b, _ := tasks.Get(buckets[p][j])
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
			return buckets[p][i] < buckets[p][j]
		})
	}
	return buckets
}

func (s *AssignSystem) assignOne(gnomeID ecs.EntityID, g *component.Gnome, buckets [4][]ecs.EntityID, tick uint64) {
	ws := s.world
	pos, ok := ws.Positions.Get(gnomeID)
	if !ok {
		return
	}
	gx, gy := tileOf(pos)
	attempts := s.cfg.Tasks.MaxPathAttempts

	for prio := int(component.PriorityUrgent); prio >= int(component.PriorityLow); prio-- {
		var bestTask ecs.EntityID
		var bestRoute []component.PathNode
		for _, taskID := range buckets[prio] {
			task, ok := ws.Tasks.Get(taskID)
			if !ok || !task.AssignedGnome.IsZero() {
				continue // taken earlier this cycle
			}
			// A gnome at carry capacity must not accept collect work.
			if task.Kind == component.TaskCollect && len(g.Inventory) >= s.cfg.Sim.CarryCapacity {
				continue
			}
			if attempts == 0 {
				break
			}
			attempts--
			route, reachable := s.finder.Route(gx, gy, task.TargetX, task.TargetY,
				task.Kind == component.TaskDig, tick)
			if !reachable {
				task.UnreachableCount++
				continue
			}
			// Strict < keeps the earliest-created candidate on ties,
			// because the bucket is already in FIFO order.
			if bestTask.IsZero() || len(route) < len(bestRoute) {
				bestTask = taskID
				bestRoute = route
			}
		}
		if !bestTask.IsZero() {
			clearIdle(ws, gnomeID)
			ws.AssignTask(bestTask, gnomeID, bestRoute)
			task, _ := ws.Tasks.Get(bestTask)
			s.log.Debug("task assigned",
				zap.Uint64("task", uint64(bestTask)),
				zap.Uint64("gnome", uint64(gnomeID)),
				zap.String("kind", task.Kind.String()),
				zap.String("priority", task.Priority.String()),
				zap.Int("route_len", len(bestRoute)),
			)
			return
		}
		if attempts == 0 {
			return // budget exhausted; gnome stays idle this cycle
		}
	}
}
