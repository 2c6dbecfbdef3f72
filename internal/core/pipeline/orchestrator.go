package pipeline

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// StageTiming is how long one stage's Run took.
type StageTiming struct {
	Name     string
	Priority Priority
	Duration time.Duration
}

// FrameReport describes one completed Tick.
type FrameReport struct {
	Frame    uint64
	Start    time.Time
	Duration time.Duration
	Stages   []StageTiming
}

// FrameObserver receives a report after every Tick.
type FrameObserver interface {
	ObserveFrame(r FrameReport)
}

// Orchestrator runs every registered stage once per frame, ascending by
// priority. Stages with equal priority keep registration order. It is
// driven from a single frame goroutine and is not safe for concurrent use.
type Orchestrator struct {
	stages    []Stage
	sorted    bool
	frame     uint64
	observers []FrameObserver
	now       func() time.Time
	log       *zap.Logger
}

func NewOrchestrator(log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		stages: make([]Stage, 0, 16),
		sorted: true,
		now:    time.Now,
		log:    log,
	}
}

// Register adds a stage. Order is re-established before the next Tick.
func (o *Orchestrator) Register(s Stage) {
	for _, have := range o.stages {
		if have == s {
			return
		}
	}
	o.stages = append(o.stages, s)
	o.sorted = false
	o.log.Debug("stage registered",
		zap.String("stage", s.Name()),
		zap.Int("priority", int(s.Priority())),
	)
}

// Unregister removes a stage; absent stages are ignored.
func (o *Orchestrator) Unregister(s Stage) {
	for i, have := range o.stages {
		if have != s {
			continue
		}
		next := make([]Stage, 0, len(o.stages)-1)
		next = append(next, o.stages[:i]...)
		o.stages = append(next, o.stages[i+1:]...)
		o.log.Debug("stage unregistered", zap.String("stage", s.Name()))
		return
	}
}

// Observe adds a FrameObserver.
func (o *Orchestrator) Observe(obs FrameObserver) {
	o.observers = append(o.observers, obs)
}

// Frame returns the number of completed ticks.
func (o *Orchestrator) Frame() uint64 { return o.frame }

// Stages returns the stages in execution order.
func (o *Orchestrator) Stages() []Stage {
	o.ensureSorted()
	out := make([]Stage, len(o.stages))
	copy(out, o.stages)
	return out
}

// Tick runs one frame. Each stage completes before the next one starts.
func (o *Orchestrator) Tick() {
	// Run from a copy: a stage may Register and re-sort o.stages mid-tick.
	stages := o.Stages()

	report := FrameReport{
		Frame:  o.frame + 1,
		Start:  o.now(),
		Stages: make([]StageTiming, 0, len(stages)),
	}
	for _, s := range stages {
		start := o.now()
		s.Run()
		report.Stages = append(report.Stages, StageTiming{
			Name:     s.Name(),
			Priority: s.Priority(),
			Duration: o.now().Sub(start),
		})
	}
	report.Duration = o.now().Sub(report.Start)
	o.frame = report.Frame

	for _, obs := range o.observers {
		obs.ObserveFrame(report)
	}
}

func (o *Orchestrator) ensureSorted() {
	if o.sorted {
		return
	}
	sort.SliceStable(o.stages, func(i, j int) bool {
		return o.stages[i].Priority() < o.stages[j].Priority()
	})
	o.sorted = true
}
