// Package path implements grid A* with 4-connectivity plus a bounded,
// tick-TTL route cache. Route length — the number of tiles in a returned
// route — is the canonical distance metric for task ranking, because unlike
// straight-line distance it respects obstacles.
package path

import (
	"container/heap"

	"github.com/deephold/server/internal/component"
)

// Grid is the read-only view of the world the pathfinder searches over.
type Grid interface {
	InBounds(x, y int) bool
	// Passable reports whether a cell can be stepped onto.
	Passable(x, y int) bool
	// MoveCost is the cost of stepping onto a cell. Pluggable so future
	// surface-dependent costs need no pathfinder change.
	MoveCost(x, y int) float64
}

// node is a priority-queue entry. seq breaks f-score ties by insertion
// order, keeping expansion order — and therefore routes — deterministic.
type node struct {
	pt    component.PathNode
	f     float64
	seq   int
	index int
}

type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *nodeQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func heuristic(a, b component.PathNode) float64 {
	return float64(abs(a.X-b.X) + abs(a.Y-b.Y))
}

// Find computes a route from (sx, sy) to (tx, ty). The returned route lists
// every step excluding the start tile; nil means unreachable.
//
// With toAdjacent set the search succeeds on any passable 4-neighbor of the
// target instead of the target itself — used for dig tasks, whose target
// tile is by definition solid. A start already at (or adjacent to) the goal
// yields an empty, non-nil route.
func Find(g Grid, sx, sy, tx, ty int, toAdjacent bool) []component.PathNode {
	start := component.PathNode{X: sx, Y: sy}
	goal := component.PathNode{X: tx, Y: ty}
	if !g.InBounds(sx, sy) || !g.InBounds(tx, ty) {
		return nil
	}
	if !g.Passable(sx, sy) {
		return nil
	}
	if !toAdjacent && !g.Passable(tx, ty) {
		return nil
	}

	atGoal := func(p component.PathNode) bool {
		if toAdjacent {
			return abs(p.X-goal.X)+abs(p.Y-goal.Y) == 1
		}
		return p == goal
	}
	if atGoal(start) {
		return []component.PathNode{}
	}

	open := make(nodeQueue, 0, 64)
	heap.Init(&open)
	cameFrom := make(map[component.PathNode]component.PathNode)
	gScore := map[component.PathNode]float64{start: 0}
	seq := 0

	heap.Push(&open, &node{pt: start, f: heuristic(start, goal)})

	for open.Len() > 0 {
		current := heap.Pop(&open).(*node).pt
		if atGoal(current) {
			return reconstruct(cameFrom, current)
		}

		// Fixed neighbor order: part of the determinism contract.
		neighbors := [4]component.PathNode{
			{X: current.X + 1, Y: current.Y},
			{X: current.X - 1, Y: current.Y},
			{X: current.X, Y: current.Y + 1},
			{X: current.X, Y: current.Y - 1},
		}
		for _, nb := range neighbors {
			if !g.InBounds(nb.X, nb.Y) || !g.Passable(nb.X, nb.Y) {
				continue
			}
			tentative := gScore[current] + g.MoveCost(nb.X, nb.Y)
			if best, seen := gScore[nb]; seen && tentative >= best {
				continue
			}
			cameFrom[nb] = current
			gScore[nb] = tentative
			seq++
			heap.Push(&open, &node{
				pt:  nb,
				f:   tentative + heuristic(nb, goal),
				seq: seq,
			})
		}
	}
	return nil
}

func reconstruct(cameFrom map[component.PathNode]component.PathNode, current component.PathNode) []component.PathNode {
	var rev []component.PathNode
	for {
		rev = append(rev, current)
		next, ok := cameFrom[current]
		if !ok {
			break
		}
		current = next
	}
	// rev ends with the start tile; drop it and flip.
	route := make([]component.PathNode, 0, len(rev)-1)
	for i := len(rev) - 2; i >= 0; i-- {
		route = append(route, rev[i])
	}
	return route
}
