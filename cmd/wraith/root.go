package main

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/wraithgo/wraith/internal/config"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	"github.com/wraithgo/wraith/internal/data"
)

const defaultConfigPath = "config/wraith.toml"

// commandContext resolves the configuration once per invocation.
type commandContext struct {
	configFlag *string

	once   sync.Once
	config *config.Config
	err    error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		if path == "" {
			path = os.Getenv("WRAITH_CONFIG")
		}
		if path == "" {
			c.config, c.err = config.LoadOrDefault(defaultConfigPath)
			return
		}
		c.config, c.err = config.Load(path)
	})
	return c.config, c.err
}

// stageOrder is the build-time order with the configured overlay applied.
func stageOrder(cfg *config.Config) (pipeline.Order, error) {
	order := pipeline.DefaultOrder()
	if cfg.Pipeline.OrderFile == "" {
		return order, nil
	}
	return data.LoadStageOrder(cfg.Pipeline.OrderFile, order)
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "wraith",
		Short:         "Frame-driven engine runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (default $WRAITH_CONFIG or "+defaultConfigPath+")")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newStagesCommand(ctx))
	rootCmd.AddCommand(newFramesCommand(ctx))
	return rootCmd
}
