package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/transferwatch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "transferwatch",
	Short: "FPL price-change prediction engine",
	Long:  "Tracks FPL transfer activity in periodic snapshots, accumulates daily deltas, forecasts price rises and falls, and verifies its own accuracy.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := cfg.Validate(cmd.Name()); err != nil {
			return err
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
