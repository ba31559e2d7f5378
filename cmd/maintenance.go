package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Roll maintenance events up per equipment",
	Long:  "Counts work orders and sums labor hours, parts cost and downtime per equipment. Maintenance cost is parts plus labor hours at the shop rate.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, _, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		events, err := kpi.ParseMIR(tables.MIR)
		if err != nil {
			return err
		}
		return emit(cmd, pipeline.MaintenanceTable(pipeline.MaintenanceKPIs(events)), nil)
	},
}

func init() {
	addOutputFlags(maintenanceCmd)
	rootCmd.AddCommand(maintenanceCmd)
}
