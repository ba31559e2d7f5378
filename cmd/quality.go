package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

var qualityStrict bool

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Report data-quality issues in the input tables",
	Long:  "Checks the ops, CAPA and MIR tables for missing columns, bad dates, non-numeric or negative values, inconsistent downtime and duplicates. Findings never block scoring.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, source, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}

		reps := pipeline.Quality(tables)
		w := cmd.OutOrStdout()
		headerColor.Fprintf(w, "Data quality: %s\n", source) //nolint:errcheck
		printReport(w, "ops", reps.Ops)
		if tables.CAPA != nil {
			printReport(w, "capa", reps.CAPA)
		}
		if tables.MIR != nil {
			printReport(w, "mir", reps.MIR)
		}

		zap.L().Info("quality: checked",
			zap.String("source", source),
			zap.Int("ops_issues", len(reps.Ops.Issues)),
			zap.Int("capa_issues", len(reps.CAPA.Issues)),
			zap.Int("mir_issues", len(reps.MIR.Issues)),
		)

		if qualityStrict && !reps.OK(tables) {
			return eris.New("quality: issues found")
		}
		return nil
	},
}

func init() {
	qualityCmd.Flags().BoolVar(&qualityStrict, "strict", false, "exit non-zero when any issue is found")
	rootCmd.AddCommand(qualityCmd)
}
