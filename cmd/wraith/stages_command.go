package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wraithgo/wraith/internal/config"
	"github.com/wraithgo/wraith/internal/core/pipeline"
)

func newStagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the stage order a run would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			order, err := stageOrder(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStages(order, cfg))
			return nil
		},
	}
}

func renderStages(order pipeline.Order, cfg *config.Config) string {
	entries := order.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(int(e.Priority)),
			string(e.Kind),
			stageStatus(e.Kind, cfg),
		})
	}
	return renderTable(
		[]string{"Priority", "Kind", "Stage"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	)
}

// stageStatus says whether run registers a stage for kind.
func stageStatus(kind pipeline.Kind, cfg *config.Config) string {
	switch kind {
	case pipeline.KindEvents, pipeline.KindUpdate, pipeline.KindPhysics, pipeline.KindEndFrame:
		return "built-in"
	case pipeline.KindNetwork:
		return enabledLabel(cfg.Network.Enabled)
	case pipeline.KindTelemetry:
		return enabledLabel(cfg.Telemetry.Enabled)
	default:
		return "-"
	}
}

func enabledLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
