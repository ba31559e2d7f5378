package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/config"
)

var cfg *config.Config

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "ops-cockpit",
	Short: "Operational cost and risk cockpit",
	Long:  "Checks operational run data, computes unit costs, compares them to group targets, scores risk and drafts corrective actions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		mode := "cli"
		if cmd.Name() == serveCmd.Name() {
			mode = "serve"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		if noColor {
			color.NoColor = true
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	addInputFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
