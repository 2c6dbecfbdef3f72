package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/wraithgo/wraith/internal/persist"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "frames <run-id>",
		Short: "List the slowest recorded frames of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return errors.New("database.dsn is not configured")
			}
			log, err := newLogger(cfg.Logging, shouldColorize(os.Stderr))
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			db, err := persist.NewDB(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			frames, err := persist.NewFrameRepo(db).SlowestFrames(cmd.Context(), runID, top)
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No frames recorded for", runID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderFrames(frames))
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 10, "Number of frames to show")
	return cmd
}

func renderFrames(frames []persist.FrameSample) string {
	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		rows = append(rows, []string{
			strconv.FormatUint(f.Frame, 10),
			f.StartedAt.Format("15:04:05.000"),
			f.Duration.String(),
			strconv.Itoa(f.PhysicsRounds),
		})
	}
	return renderTable(
		[]string{"Frame", "Started", "Duration", "Physics rounds"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
	)
}
