package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wraithgo/wraith/internal/config"
	"github.com/wraithgo/wraith/internal/core/event"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	"github.com/wraithgo/wraith/internal/core/timer"
	"github.com/wraithgo/wraith/internal/input"
	gonet "github.com/wraithgo/wraith/internal/net"
	"github.com/wraithgo/wraith/internal/net/packet"
	"github.com/wraithgo/wraith/internal/persist"
	"github.com/wraithgo/wraith/internal/scripting"
	"github.com/wraithgo/wraith/internal/system"
	"go.uber.org/zap"
)

// engine owns every stage and collaborator of one run.
type engine struct {
	runID uuid.UUID
	orch  *pipeline.Orchestrator
	bus   *event.Bus
	input *input.State

	physics   *pipeline.FixedRateStage
	update    *system.UpdateStage
	scripts   *scripting.Engine
	server    *gonet.Server
	telemetry *system.TelemetryStage
	db        *persist.DB

	log *zap.Logger
}

func newEngine(ctx context.Context, cfg *config.Config, order pipeline.Order, runID uuid.UUID, log *zap.Logger) (_ *engine, err error) {
	e := &engine{
		runID: runID,
		orch:  pipeline.NewOrchestrator(log),
		bus:   event.NewBus(),
		input: input.New(),
		log:   log,
	}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	// Slow collaborators first. The timed stages below start their clocks
	// on construction, so nothing spent here reaches the first frame.
	if cfg.Scripting.Enabled {
		if err = e.loadScripts(cfg.Scripting.Dir); err != nil {
			return nil, err
		}
	}
	if cfg.Network.Enabled {
		if err = e.startNetwork(cfg.Network, order); err != nil {
			return nil, err
		}
	}
	if cfg.Telemetry.Enabled {
		if err = e.openStore(ctx, cfg.Database); err != nil {
			return nil, err
		}
	}

	if err = e.buildStages(cfg.Engine, order); err != nil {
		return nil, err
	}
	if e.db != nil {
		if err = e.startTelemetry(cfg.Telemetry, order); err != nil {
			return nil, err
		}
	}

	event.Subscribe(e.bus, func(ev event.ClientConnected) {
		log.Info("client connected",
			zap.Uint64("client", ev.Client.ID),
			zap.Stringer("peer", ev.Client.Connection()),
		)
	})
	event.Subscribe(e.bus, func(ev event.ClientDisconnected) {
		log.Info("client disconnected", zap.Uint64("client", ev.Client.ID))
	})
	return e, nil
}

// loadScripts runs every script chunk. The behaviors are enabled once the
// stages exist.
func (e *engine) loadScripts(dir string) error {
	scripts, err := scripting.NewEngine(dir, e.log)
	if err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	e.scripts = scripts
	e.log.Info("scripts loaded", zap.Int("count", len(scripts.Scripts())), zap.String("dir", dir))
	return nil
}

// buildStages creates the frame stages. Scripts are enabled on both the
// variable and fixed-rate stage; each stage only calls the capabilities a
// script actually has.
func (e *engine) buildStages(cfg config.EngineConfig, order pipeline.Order) error {
	events, err := system.NewEventStage(order, e.bus, e.log)
	if err != nil {
		return err
	}
	e.update, err = system.NewUpdateStage(order, timer.NewClock(), e.log)
	if err != nil {
		return err
	}
	e.physics, err = system.NewPhysicsStage(order, timer.NewClock(), cfg, e.log)
	if err != nil {
		return err
	}
	endFrame, err := system.NewEndFrameStage(order, e.log)
	if err != nil {
		return err
	}
	endFrame.EnableBehavior(e.input)

	if e.scripts != nil {
		for _, b := range e.scripts.Behaviors() {
			e.update.EnableBehavior(b)
			e.physics.EnableBehavior(b)
		}
	}

	e.orch.Register(events)
	e.orch.Register(e.update)
	e.orch.Register(e.physics)
	e.orch.Register(endFrame)
	return nil
}

func (e *engine) startNetwork(cfg config.NetworkConfig, order pipeline.Order) error {
	cs, err := packet.LookupCharset(cfg.Charset)
	if err != nil {
		return err
	}
	srv, err := gonet.NewServer(cfg.BindAddress, gonet.FrameCodec{}, cfg.InQueueSize, e.log,
		gonet.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout),
	)
	if err != nil {
		return err
	}
	e.server = srv

	stage, err := system.NewNetworkStage(order, srv, e.bus, cfg.MaxMessagesTick, e.log)
	if err != nil {
		return err
	}
	reg := packet.NewRegistry(cs, e.log)
	registerHandlers(reg, cs, e)
	stage.EnableBehavior(reg)
	e.orch.Register(stage)

	go srv.AcceptLoop()
	e.log.Info("network listening", zap.Stringer("addr", srv.Addr()), zap.String("charset", cs.Name()))
	return nil
}

// openStore connects to the database and applies migrations.
func (e *engine) openStore(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := persist.NewDB(ctx, cfg, e.log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	e.db = db
	version, err := persist.RunMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	e.log.Info("migrations applied", zap.Int64("version", version))
	return nil
}

func (e *engine) startTelemetry(cfg config.TelemetryConfig, order pipeline.Order) error {
	tel, err := system.NewTelemetryStage(order, e.runID, persist.NewFrameRepo(e.db), e.physics,
		cfg.BatchSize, cfg.QueueDepth, e.log)
	if err != nil {
		return err
	}
	e.telemetry = tel
	e.orch.Register(tel)
	e.orch.Observe(tel)
	return nil
}

// Frame is the number of completed frames.
func (e *engine) Frame() uint64 { return e.orch.Frame() }

// run ticks the orchestrator every interval until ctx is done.
func (e *engine) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.orch.Tick()
		case <-ctx.Done():
			return
		}
	}
}

// Close releases everything in reverse start order. Safe on a partially
// built engine.
func (e *engine) Close() {
	if e.server != nil {
		e.server.Shutdown()
	}
	if e.telemetry != nil {
		e.telemetry.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
	if e.scripts != nil {
		e.scripts.Close()
	}
	e.input.Dispose()
}
