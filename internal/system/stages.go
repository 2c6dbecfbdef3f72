package system

import (
	"fmt"
	"time"

	"github.com/wraithgo/wraith/internal/config"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	"github.com/wraithgo/wraith/internal/core/timer"
	"go.uber.org/zap"
)

// NewPhysicsStage builds the fixed-rate physics stage. It owns t; no other
// stage may query it.
func NewPhysicsStage(order pipeline.Order, t timer.Timer, cfg config.EngineConfig, log *zap.Logger) (*pipeline.FixedRateStage, error) {
	prio, err := order.Priority(pipeline.KindPhysics)
	if err != nil {
		return nil, err
	}
	policy, err := pipeline.ParseOverflowPolicy(cfg.Overflow)
	if err != nil {
		return nil, err
	}
	s, err := pipeline.NewFixedRateStage("physics", prio, t, cfg.PhysicsStep, log,
		pipeline.WithMaxRounds(cfg.MaxRounds, policy),
	)
	if err != nil {
		return nil, fmt.Errorf("physics stage: %w", err)
	}
	return s, nil
}

// UpdateStage calls Update(dt) on every Updater once per frame, where dt is
// the time since the previous frame as reported by its own timer.
type UpdateStage struct {
	*pipeline.Base
	timer  timer.Timer
	lastDT time.Duration
}

func NewUpdateStage(order pipeline.Order, t timer.Timer, log *zap.Logger) (*UpdateStage, error) {
	if t == nil {
		return nil, pipeline.ErrNilTimer
	}
	prio, err := order.Priority(pipeline.KindUpdate)
	if err != nil {
		return nil, err
	}
	return &UpdateStage{
		Base:  pipeline.NewBase("update", prio, log),
		timer: t,
	}, nil
}

// LastDelta returns the dt passed to behaviors in the latest Run.
func (s *UpdateStage) LastDelta() time.Duration { return s.lastDT }

func (s *UpdateStage) Run() {
	dt := s.timer.Elapsed()
	s.lastDT = dt
	for _, b := range s.Behaviors() {
		u, ok := b.(pipeline.Updater)
		if !ok {
			continue
		}
		_ = s.Invoke(b, func() error { return u.Update(dt) })
	}
}

// EndFrameStage runs last in the frame and calls EndFrame on every
// FrameEnder, which is where input buffers swap.
type EndFrameStage struct {
	*pipeline.Base
}

func NewEndFrameStage(order pipeline.Order, log *zap.Logger) (*EndFrameStage, error) {
	prio, err := order.Priority(pipeline.KindEndFrame)
	if err != nil {
		return nil, err
	}
	return &EndFrameStage{Base: pipeline.NewBase("end_frame", prio, log)}, nil
}

func (s *EndFrameStage) Run() {
	for _, b := range s.Behaviors() {
		fe, ok := b.(pipeline.FrameEnder)
		if !ok {
			continue
		}
		_ = s.Invoke(b, fe.EndFrame)
	}
}
