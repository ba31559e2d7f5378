package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
)

// scoreColumns is the terminal projection of the scored table.
var scoreColumns = []string{
	model.ColDate, model.ColSubsidiary, model.ColActivity, model.ColContract, model.ColEquipmentID,
	"profit", "cost_per_km", "cost_per_hour", "var_cpkm_pct", "var_cph_pct",
	"risk_score", "risk_level", "reason_codes",
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute KPIs, variances and risk for every run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, rows, err := scoreInputs(cmd.Context())
		if err != nil {
			return err
		}

		if outFormat == formatTable && outPath == "" {
			printSummary(cmd, kpi.Summarize(rows))
		}
		zap.L().Info("score: runs scored",
			zap.Int("rows", len(res.Scored)),
			zap.Int("filtered", len(rows)),
			zap.Bool("targets_derived", res.TargetsDerived),
		)
		return emit(cmd, kpi.ScoredTable(rows), scoreColumns)
	},
}

func printSummary(cmd *cobra.Command, s kpi.Summary) {
	w := cmd.OutOrStdout()
	margin := "-"
	if s.Margin.Valid {
		margin = fmt.Sprintf("%.1f%%", s.Margin.Value*100)
	}
	headerColor.Fprintf(w, "%d runs\n", s.Rows) //nolint:errcheck
	fmt.Fprintf(w, "  %s %.0f  %s %.0f  %s %s  %s %s\n",
		labelColor.Sprint("revenue"), s.Revenue,
		labelColor.Sprint("cost"), s.TotalCost,
		labelColor.Sprint("profit"), signed(s.Profit),
		labelColor.Sprint("margin"), margin,
	)
	fmt.Fprintf(w, "  %s %s  %s %s  %s %s  %s %.1f\n\n",
		labelColor.Sprint("cost/km"), orDash(s.CostPerKm),
		labelColor.Sprint("cost/h"), orDash(s.CostPerHour),
		labelColor.Sprint("cost/m3"), orDash(s.CostPerM3),
		labelColor.Sprint("downtime h"), s.DowntimeHours,
	)
}

func signed(v float64) string {
	if v < 0 {
		return badColor.Sprintf("%.0f", v)
	}
	return goodColor.Sprintf("%.0f", v)
}

func orDash(f model.Float) string {
	if !f.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", f.Value)
}

func init() {
	addFilterFlags(scoreCmd)
	addOutputFlags(scoreCmd)
	rootCmd.AddCommand(scoreCmd)
}
