package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "heatscan",
	Short: "Urban heat island compositing and scoring engine",
	Long:  "Composites satellite and heat-overlay imagery, scores urban heat island intensity from weather, satellite and visual data, and produces ranked cooling recommendations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

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
