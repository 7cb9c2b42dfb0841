package ecs

// EntityID is a bare integer identifier. An entity has no inherent behavior;
// its type is defined entirely by which component stores contain it.
// The zero value is reserved and means "no entity".
type EntityID uint64

func (id EntityID) IsZero() bool { return id == 0 }

// Allocator hands out entity ids from a monotonic counter. Ids are never
// reused, so stale references can be detected by a plain map lookup and
// serialized state stays stable across save/load.
type Allocator struct {
	next EntityID
}

func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

func (a *Allocator) Create() EntityID {
	id := a.next
	a.next++
	return id
}

// Next reports the next id the allocator would hand out. Used by snapshots.
func (a *Allocator) Next() EntityID { return a.next }

// SetNext restores the counter from a snapshot. Values below the current
// counter are ignored so a partial restore can never cause id reuse.
func (a *Allocator) SetNext(next EntityID) {
	if next > a.next {
		a.next = next
	}
}
