package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/recommend"
)

var recommendTop int

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "List the highest-risk runs with recommended actions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, rows, err := scoreInputs(cmd.Context())
		if err != nil {
			return err
		}

		n := cfg.Pipeline.TopN
		if cmd.Flags().Changed("top") {
			n = recommendTop
		}
		recs := recommend.Build(rows, n, recommend.ForLocale(cfg.Export.Locale))

		zap.L().Info("recommend: built", zap.Int("rows", len(rows)), zap.Int("top_n", n), zap.Int("recommendations", len(recs)))
		return emit(cmd, recommend.Table(recs), nil)
	},
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendTop, "top", "n", 0, "number of recommendations, -1 for all (default from config)")
	addFilterFlags(recommendCmd)
	addOutputFlags(recommendCmd)
	rootCmd.AddCommand(recommendCmd)
}
