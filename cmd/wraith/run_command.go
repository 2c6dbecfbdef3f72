package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the frame loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Logging, shouldColorize(os.Stderr))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			order, err := stageOrder(cfg)
			if err != nil {
				return err
			}

			runID := uuid.New()
			log = log.With(zap.String("run", runID.String()))

			startCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			eng, err := newEngine(startCtx, cfg, order, runID, log)
			if err != nil {
				return err
			}
			defer eng.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("engine started",
				zap.String("name", cfg.Engine.Name),
				zap.Duration("frame_interval", cfg.Engine.FrameInterval),
				zap.Duration("physics_step", cfg.Engine.PhysicsStep),
				zap.Int("stages", len(eng.orch.Stages())),
			)
			eng.run(runCtx, cfg.Engine.FrameInterval)

			stats := eng.physics.Stats()
			log.Info("engine stopping",
				zap.Uint64("frames", eng.orch.Frame()),
				zap.Uint64("physics_rounds", stats.Rounds),
				zap.Duration("physics_dropped", stats.Dropped),
			)
			return nil
		},
	}
}
