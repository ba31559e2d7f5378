package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
)

var (
	capaCount  int
	capaMerged bool
)

var capaCmd = &cobra.Command{
	Use:   "capa",
	Short: "Propose corrective actions for the riskiest run groups",
	Example: `  # Show proposals
  ops-cockpit capa --ops runs.csv

  # Append proposals to an existing CAPA file
  ops-cockpit capa --ops runs.csv --capa capa.csv --merged -o capa.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tables, _, err := loadTables(cmd.Context())
		if err != nil {
			return err
		}
		res, err := pipeline.Run(tables, pipelineOptions())
		if err != nil {
			return err
		}
		day, err := today()
		if err != nil {
			return err
		}

		actions := pipeline.ProposeCAPA(kpi.Aggregate(res.Scored), day, capaCount)
		zap.L().Info("capa: proposed", zap.Int("actions", len(actions)), zap.Int("existing", tables.CAPA.Len()))

		if capaMerged {
			return emit(cmd, pipeline.AppendCAPA(tables.CAPA, actions), nil)
		}
		return emit(cmd, pipeline.CAPATable(actions), nil)
	},
}

func init() {
	capaCmd.Flags().IntVar(&capaCount, "count", pipeline.ProposalCount, "number of groups to propose actions for")
	capaCmd.Flags().BoolVar(&capaMerged, "merged", false, "output the existing CAPA table with the proposals appended")
	addOutputFlags(capaCmd)
	rootCmd.AddCommand(capaCmd)
}
