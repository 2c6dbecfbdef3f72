package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/wraithgo/wraith/internal/core/timer"
	"go.uber.org/zap"
)

var (
	ErrInvalidStep = errors.New("fixed-rate step must be positive")
	ErrNilTimer    = errors.New("fixed-rate stage needs a timer")
)

// OverflowPolicy decides what happens to accumulated time beyond the
// per-run round cap.
type OverflowPolicy int

const (
	// OverflowCarry keeps the excess and works it off in later frames.
	OverflowCarry OverflowPolicy = iota
	// OverflowDrop discards whole steps beyond the cap, keeping only the
	// sub-step remainder.
	OverflowDrop
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowCarry:
		return "carry"
	case OverflowDrop:
		return "drop"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy accepts "carry" or "drop"; empty means carry.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "carry":
		return OverflowCarry, nil
	case "drop":
		return OverflowDrop, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// FixedStats summarises the rounds executed by a FixedRateStage.
type FixedStats struct {
	Rounds     uint64        // rounds since construction
	LastRounds int           // rounds in the most recent Run
	Dropped    time.Duration // time discarded by OverflowDrop
}

// FixedOption configures a FixedRateStage.
type FixedOption func(*FixedRateStage)

// WithMaxRounds caps the rounds executed by a single Run. Zero leaves the
// stage unbounded.
func WithMaxRounds(n int, policy OverflowPolicy) FixedOption {
	return func(s *FixedRateStage) {
		if n < 0 {
			n = 0
		}
		s.maxRounds = n
		s.overflow = policy
	}
}

// FixedRateStage runs FixedUpdater behaviors at a constant logical rate
// using a time accumulator fed by its own Timer.
type FixedRateStage struct {
	*Base

	timer timer.Timer
	step  time.Duration
	acc   time.Duration

	maxRounds int
	overflow  OverflowPolicy
	stats     FixedStats
}

// NewFixedRateStage builds a stage that owns t exclusively. One baseline
// sample is read from t here and credited to the accumulator, so time that
// passes between construction and the first Run is not lost.
func NewFixedRateStage(name string, priority Priority, t timer.Timer, step time.Duration, log *zap.Logger, opts ...FixedOption) (*FixedRateStage, error) {
	if t == nil {
		return nil, ErrNilTimer
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, step)
	}
	s := &FixedRateStage{
		Base:  NewBase(name, priority, log),
		timer: t,
		step:  step,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.acc = t.Elapsed()
	return s, nil
}

func (s *FixedRateStage) Step() time.Duration        { return s.step }
func (s *FixedRateStage) Accumulated() time.Duration { return s.acc }
func (s *FixedRateStage) Stats() FixedStats          { return s.stats }

// Run consumes the timer's elapsed delta and executes as many fixed rounds
// as the accumulator allows. The remainder carries into the next Run.
func (s *FixedRateStage) Run() {
	s.acc += s.timer.Elapsed()

	rounds := 0
	for s.acc >= s.step {
		if s.maxRounds > 0 && rounds >= s.maxRounds {
			s.handleOverflow(rounds)
			break
		}
		s.round()
		s.acc -= s.step
		rounds++
	}
	s.stats.LastRounds = rounds
	s.stats.Rounds += uint64(rounds)
}

// round invokes every FixedUpdater enabled when the round starts.
func (s *FixedRateStage) round() {
	for _, b := range s.Behaviors() {
		fu, ok := b.(FixedUpdater)
		if !ok {
			continue
		}
		_ = s.Invoke(b, func() error { return fu.FixedUpdate(s.step) })
	}
}

func (s *FixedRateStage) handleOverflow(rounds int) {
	pending := s.acc / s.step
	switch s.overflow {
	case OverflowDrop:
		dropped := pending * s.step
		s.acc -= dropped
		s.stats.Dropped += dropped
		s.Log().Warn("fixed-rate catch-up capped, dropping time",
			zap.Int("rounds", rounds),
			zap.Int64("dropped_steps", int64(pending)),
			zap.Duration("dropped", dropped),
		)
	default:
		s.Log().Debug("fixed-rate catch-up capped, carrying time",
			zap.Int("rounds", rounds),
			zap.Int64("pending_steps", int64(pending)),
		)
	}
}
