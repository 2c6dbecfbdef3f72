package pipeline

import (
	"fmt"

	"go.uber.org/zap"
)

// Stage is one schedulable unit of the frame. The Orchestrator reads
// Priority for ordering and calls Run exactly once per frame.
type Stage interface {
	Name() string
	Priority() Priority
	EnableBehavior(b Behavior)
	DisableBehavior(b Behavior)
	Run()
}

// Base carries the parts every stage shares: a fixed priority, the
// behavior set and a logger. Concrete stages embed a *Base and supply Run.
type Base struct {
	name      string
	priority  Priority
	behaviors BehaviorSet
	log       *zap.Logger
}

func NewBase(name string, priority Priority, log *zap.Logger) *Base {
	if log == nil {
		log = zap.NewNop()
	}
	return &Base{
		name:     name,
		priority: priority,
		log:      log.With(zap.String("stage", name)),
	}
}

func (b *Base) Name() string       { return b.name }
func (b *Base) Priority() Priority { return b.priority }
func (b *Base) Log() *zap.Logger   { return b.log }

// EnableBehavior registers beh. Registration never checks capabilities; a
// behavior the stage cannot drive is stored and skipped at invocation.
func (b *Base) EnableBehavior(beh Behavior) { b.behaviors.Enable(beh) }

func (b *Base) DisableBehavior(beh Behavior) { b.behaviors.Disable(beh) }

// Behaviors returns the current registration-ordered snapshot.
func (b *Base) Behaviors() []Behavior { return b.behaviors.Snapshot() }

// HasBehavior reports whether beh is enabled on this stage.
func (b *Base) HasBehavior(beh Behavior) bool { return b.behaviors.Contains(beh) }

// Invoke runs fn for one behavior, converting a panic into an error and
// logging any failure so a misbehaving participant cannot abort the rest
// of the round.
func (b *Base) Invoke(beh Behavior, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("behavior %T panicked: %v", beh, rec)
		}
		if err != nil {
			b.log.Error("behavior failed",
				zap.String("behavior", fmt.Sprintf("%T", beh)),
				zap.Error(err),
			)
		}
	}()
	return fn()
}
