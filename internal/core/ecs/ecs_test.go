package ecs

import "testing"

type health struct{ HP int }

func TestStoreBasics(t *testing.T) {
	s := NewStore[health]()
	if s.Len() != 0 {
		t.Fatalf("new store len = %d, want 0", s.Len())
	}
	s.Set(3, &health{HP: 10})
	c, ok := s.Get(3)
	if !ok || c.HP != 10 {
		t.Fatalf("Get(3) = %v, %v", c, ok)
	}
	if !s.Has(3) || s.Has(4) {
		t.Fatalf("Has reported wrong membership")
	}
	s.Remove(3)
	if s.Has(3) {
		t.Fatalf("Remove(3) left the entity behind")
	}
}

func TestStoreIDsSorted(t *testing.T) {
	s := NewStore[health]()
	for _, id := range []EntityID{9, 2, 7, 1, 5} {
		s.Set(id, &health{})
	}
	ids := s.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs not strictly ascending: %v", ids)
		}
	}
	if len(ids) != 5 {
		t.Fatalf("IDs len = %d, want 5", len(ids))
	}
}

func TestEach2Intersection(t *testing.T) {
	a := NewStore[health]()
	b := NewStore[struct{ X int }]()
	a.Set(1, &health{})
	a.Set(2, &health{})
	b.Set(2, &struct{ X int }{})
	b.Set(3, &struct{ X int }{})

	var seen []EntityID
	Each2(a, b, func(id EntityID, _ *health, _ *struct{ X int }) {
		seen = append(seen, id)
	})
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("Each2 visited %v, want [2]", seen)
	}
}

func TestRegistryRemoveAll(t *testing.T) {
	a := NewStore[health]()
	b := NewStore[struct{ X int }]()
	r := NewRegistry()
	r.Register(a)
	r.Register(b)

	a.Set(7, &health{})
	b.Set(7, &struct{ X int }{})
	r.RemoveAll(7)
	if a.Has(7) || b.Has(7) {
		t.Fatalf("RemoveAll left components behind")
	}
}

func TestAllocatorMonotonic(t *testing.T) {
	al := NewAllocator()
	first := al.Create()
	if first != 1 {
		t.Fatalf("first id = %d, want 1", first)
	}
	second := al.Create()
	if second != 2 {
		t.Fatalf("second id = %d, want 2", second)
	}

	al.SetNext(100)
	if got := al.Create(); got != 100 {
		t.Fatalf("after SetNext(100), Create = %d", got)
	}
	// Lowering is ignored: ids must never be reused.
	al.SetNext(5)
	if got := al.Create(); got != 101 {
		t.Fatalf("SetNext lowered the counter: Create = %d", got)
	}
}
