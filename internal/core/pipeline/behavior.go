package pipeline

import (
	"reflect"
	"sync"
	"time"
)

// Behavior is an opaque participant identity. Stages compare behaviors by
// identity only, so a behavior must be a comparable value (normally a
// pointer). What a behavior can do is expressed by the capability
// interfaces below, checked when a stage invokes it, never on registration.
type Behavior any

// Updater is the variable-rate update capability.
type Updater interface {
	Update(dt time.Duration) error
}

// FixedUpdater is the fixed-rate update capability.
type FixedUpdater interface {
	FixedUpdate(step time.Duration) error
}

// FrameEnder is called once at the end of every frame.
type FrameEnder interface {
	EndFrame() error
}

// BehaviorSet is an insertion-ordered set of behaviors without duplicates.
// The mutex only guards registration; iteration works on snapshots so a
// behavior may enable or disable others while being invoked.
type BehaviorSet struct {
	mu    sync.Mutex
	items []Behavior
}

// Enable appends b if it is not already present. Nil and non-comparable
// values are ignored.
func (s *BehaviorSet) Enable(b Behavior) {
	if b == nil || !reflect.TypeOf(b).Comparable() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(b) >= 0 {
		return
	}
	next := make([]Behavior, len(s.items), len(s.items)+1)
	copy(next, s.items)
	s.items = append(next, b)
}

// Disable removes b. Removing an absent behavior is a no-op.
func (s *BehaviorSet) Disable(b Behavior) {
	if b == nil || !reflect.TypeOf(b).Comparable() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(b)
	if i < 0 {
		return
	}
	next := make([]Behavior, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	s.items = append(next, s.items[i+1:]...)
}

// Contains reports whether b is enabled.
func (s *BehaviorSet) Contains(b Behavior) bool {
	if b == nil || !reflect.TypeOf(b).Comparable() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(b) >= 0
}

// Len returns the number of enabled behaviors.
func (s *BehaviorSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns the current members in registration order. The returned
// slice is never modified by later Enable or Disable calls.
func (s *BehaviorSet) Snapshot() []Behavior {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

func (s *BehaviorSet) indexOf(b Behavior) int {
	for i, it := range s.items {
		if it == b {
			return i
		}
	}
	return -1
}
