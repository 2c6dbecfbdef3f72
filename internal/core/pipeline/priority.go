package pipeline

import (
	"fmt"
	"sort"
)

// Priority defines execution ordering within a single frame. Lower values
// run earlier.
type Priority int

// Kind names a stage slot in the frame.
type Kind string

const (
	KindNetwork    Kind = "network"     // drain inbound client messages
	KindEvents     Kind = "events"      // dispatch last frame's events
	KindUpdate     Kind = "update"      // variable-rate behavior updates
	KindPhysics    Kind = "physics"     // fixed-rate simulation rounds
	KindPostUpdate Kind = "post_update" // reads settled physics state
	KindRender     Kind = "render"
	KindEndFrame   Kind = "end_frame" // input buffer swap
	KindTelemetry  Kind = "telemetry"
)

// Order maps stage kinds to priorities. It is immutable once built: the
// With method returns a modified copy.
type Order struct {
	prio map[Kind]Priority
}

// DefaultOrder returns the build-time ordering table.
func DefaultOrder() Order {
	return NewOrder(map[Kind]Priority{
		KindNetwork:    0,
		KindEvents:     10,
		KindUpdate:     20,
		KindPhysics:    30,
		KindPostUpdate: 40,
		KindRender:     50,
		KindEndFrame:   60,
		KindTelemetry:  70,
	})
}

// NewOrder copies m into a new Order.
func NewOrder(m map[Kind]Priority) Order {
	o := Order{prio: make(map[Kind]Priority, len(m))}
	for k, p := range m {
		o.prio[k] = p
	}
	return o
}

// Priority returns the priority assigned to kind.
func (o Order) Priority(kind Kind) (Priority, error) {
	p, ok := o.prio[kind]
	if !ok {
		return 0, fmt.Errorf("no priority for stage kind %q", kind)
	}
	return p, nil
}

// MustPriority is Priority for kinds known to be present, such as the
// built-in kinds of an Order derived from DefaultOrder.
func (o Order) MustPriority(kind Kind) Priority {
	p, err := o.Priority(kind)
	if err != nil {
		panic(err)
	}
	return p
}

// With returns a copy of o with kind set to p.
func (o Order) With(kind Kind, p Priority) Order {
	n := NewOrder(o.prio)
	n.prio[kind] = p
	return n
}

// Entry is one row of an Order.
type Entry struct {
	Kind     Kind
	Priority Priority
}

// Entries lists the table ascending by priority, ties broken by kind name.
func (o Order) Entries() []Entry {
	out := make([]Entry, 0, len(o.prio))
	for k, p := range o.prio {
		out = append(out, Entry{Kind: k, Priority: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
