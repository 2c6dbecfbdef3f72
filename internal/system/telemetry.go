package system

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	"github.com/wraithgo/wraith/internal/persist"
	"go.uber.org/zap"
)

// FrameSink stores batches of frame samples.
type FrameSink interface {
	WriteFrames(ctx context.Context, runID uuid.UUID, samples []persist.FrameSample) error
}

// RoundCounter reports how many fixed rounds ran in the latest frame.
type RoundCounter interface {
	Stats() pipeline.FixedStats
}

// TelemetryStage collects one sample per frame and ships full batches to a
// sink on a background goroutine, so a slow database never stalls the
// frame. When the writer falls behind, batches are dropped and counted.
type TelemetryStage struct {
	*pipeline.Base

	runID     uuid.UUID
	sink      FrameSink
	rounds    RoundCounter
	batchSize int

	pending []persist.FrameSample
	queue   chan []persist.FrameSample
	dropped int
	wg      sync.WaitGroup
	once    sync.Once
}

func NewTelemetryStage(order pipeline.Order, runID uuid.UUID, sink FrameSink, rounds RoundCounter, batchSize, queueDepth int, log *zap.Logger) (*TelemetryStage, error) {
	prio, err := order.Priority(pipeline.KindTelemetry)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if queueDepth <= 0 {
		queueDepth = 1
	}
	s := &TelemetryStage{
		Base:      pipeline.NewBase("telemetry", prio, log),
		runID:     runID,
		sink:      sink,
		rounds:    rounds,
		batchSize: batchSize,
		pending:   make([]persist.FrameSample, 0, batchSize),
		queue:     make(chan []persist.FrameSample, queueDepth),
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s, nil
}

// ObserveFrame records a completed frame. It runs on the frame goroutine
// right after the orchestrator's tick.
func (s *TelemetryStage) ObserveFrame(r pipeline.FrameReport) {
	sample := persist.FrameSample{
		Frame:     r.Frame,
		StartedAt: r.Start,
		Duration:  r.Duration,
		Stages:    make(map[string]time.Duration, len(r.Stages)),
	}
	for _, st := range r.Stages {
		sample.Stages[st.Name] = st.Duration
	}
	if s.rounds != nil {
		sample.PhysicsRounds = s.rounds.Stats().LastRounds
	}
	s.pending = append(s.pending, sample)
}

// Run hands the pending samples to the writer once a batch is full.
func (s *TelemetryStage) Run() {
	if len(s.pending) < s.batchSize {
		return
	}
	s.handOff()
}

// Dropped returns the number of batches discarded because the writer was
// behind.
func (s *TelemetryStage) Dropped() int { return s.dropped }

// Close flushes what is pending and waits for the writer to finish.
func (s *TelemetryStage) Close() {
	s.once.Do(func() {
		if len(s.pending) > 0 {
			s.queue <- s.pending
			s.pending = nil
		}
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *TelemetryStage) handOff() {
	batch := s.pending
	s.pending = make([]persist.FrameSample, 0, s.batchSize)
	select {
	case s.queue <- batch:
	default:
		s.dropped++
		s.Log().Warn("telemetry writer behind, dropping batch",
			zap.Int("samples", len(batch)),
			zap.Int("dropped_batches", s.dropped),
		)
	}
}

func (s *TelemetryStage) writeLoop() {
	defer s.wg.Done()
	for batch := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := s.sink.WriteFrames(ctx, s.runID, batch)
		cancel()
		if err != nil {
			s.Log().Error("write frame samples", zap.Int("samples", len(batch)), zap.Error(err))
		}
	}
}
