package pipeline

import "testing"

func TestBehaviorSetEnableIsIdempotent(t *testing.T) {
	var s BehaviorSet
	a, b := &plainBehavior{id: 1}, &plainBehavior{id: 2}

	s.Enable(a)
	s.Enable(b)
	s.Enable(a)

	got := s.Snapshot()
	if len(got) != 2 || got[0] != Behavior(a) || got[1] != Behavior(b) {
		t.Fatalf("snapshot = %v, want [a b]", got)
	}
}

func TestBehaviorSetDisablePreservesOrder(t *testing.T) {
	var s BehaviorSet
	items := []*plainBehavior{{id: 1}, {id: 2}, {id: 3}, {id: 4}}
	for _, it := range items {
		s.Enable(it)
	}
	s.Disable(items[1])
	s.Disable(&plainBehavior{id: 9})

	got := s.Snapshot()
	want := []*plainBehavior{items[0], items[2], items[3]}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != Behavior(want[i]) {
			t.Fatalf("index %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBehaviorSetSnapshotIsStable(t *testing.T) {
	var s BehaviorSet
	a, b, c := &plainBehavior{id: 1}, &plainBehavior{id: 2}, &plainBehavior{id: 3}
	s.Enable(a)
	s.Enable(b)

	snap := s.Snapshot()
	s.Disable(a)
	s.Enable(c)

	if len(snap) != 2 || snap[0] != Behavior(a) || snap[1] != Behavior(b) {
		t.Fatalf("snapshot changed after mutation: %v", snap)
	}
	if s.Len() != 2 || !s.Contains(c) || s.Contains(a) {
		t.Fatalf("live set wrong: %v", s.Snapshot())
	}
}

func TestBehaviorSetIgnoresUnusableValues(t *testing.T) {
	var s BehaviorSet
	s.Enable(nil)
	s.Enable([]int{1, 2})
	s.Enable(map[string]int{})
	s.Disable([]int{1})
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestBehaviorSharedAcrossStages(t *testing.T) {
	one := NewBase("one", 1, nil)
	two := NewBase("two", 2, nil)
	b := &fixedCounter{}

	one.EnableBehavior(b)
	two.EnableBehavior(b)
	one.DisableBehavior(b)

	if one.HasBehavior(b) {
		t.Fatal("behavior still enabled on stage one")
	}
	if !two.HasBehavior(b) {
		t.Fatal("disabling on one stage must not affect another")
	}
}
