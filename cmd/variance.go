package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

var (
	varianceWeekly     bool
	varianceByContract bool
)

var varianceColumns = []string{
	model.ColSubsidiary, model.ColActivity, model.ColContract, model.ColEquipmentID,
	"runs", "profit", "cost_per_km", "cost_per_hour", "var_cpkm_pct", "var_cph_pct", "risk_score",
}

var varianceCmd = &cobra.Command{
	Use:   "variance",
	Short: "Aggregate cost variances by subsidiary, activity, contract and equipment",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, rows, err := scoreInputs(cmd.Context())
		if err != nil {
			return err
		}

		switch {
		case varianceWeekly:
			b := export.Briefing{Weekly: kpi.WeeklyCostPerKm(rows)}
			chart := b.Chart()
			if chart == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no cost/km data to plot")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), chart)
			return nil
		case varianceByContract:
			return emit(cmd, contractTable(kpi.ProfitByContract(rows)), nil)
		}
		return emit(cmd, kpi.GroupTable(kpi.Aggregate(rows)), varianceColumns)
	},
}

func contractTable(cps []kpi.ContractProfit) *tabular.Table {
	t := tabular.New(model.ColContract, model.ColRevenue, "profit", "margin")
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, c := range cps {
		t.Append([]string{c.Contract, f(c.Revenue), f(c.Profit), f(c.Margin)})
	}
	return t
}

func init() {
	varianceCmd.Flags().BoolVar(&varianceWeekly, "weekly", false, "plot the weekly median cost per km instead")
	varianceCmd.Flags().BoolVar(&varianceByContract, "by-contract", false, "show profit by contract instead")
	addFilterFlags(varianceCmd)
	addOutputFlags(varianceCmd)
	rootCmd.AddCommand(varianceCmd)
}
