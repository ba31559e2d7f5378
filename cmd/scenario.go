package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/session"
	"github.com/sells-group/ops-cockpit/internal/store"
)

var (
	scenarioFile string
	scenarioFlag = pipeline.NeutralScenario("Scenario A")
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Recompute KPIs under cost, revenue and volume multipliers",
	Long: `Applies what-if multipliers to the runs and compares the resulting KPI
summary against the base. Scenarios come from a YAML file with a top-level
"scenarios" list, or from the multiplier flags.`,
	Example: `  ops-cockpit scenario --name "Fuel +20%" --fuel 1.2
  ops-cockpit scenario --file scenarios.yaml --format csv -o library.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		scenarios := []pipeline.Scenario{scenarioFlag}
		if scenarioFile != "" {
			var err error
			scenarios, err = pipeline.LoadScenarios(scenarioFile)
			if err != nil {
				return err
			}
		}
		if len(scenarios) == 0 {
			return eris.New("scenario: no scenarios defined")
		}

		tables, source, err := loadTables(ctx)
		if err != nil {
			return err
		}
		f, err := filterFromFlags()
		if err != nil {
			return err
		}

		mgr := session.NewManager(session.ManagerConfig{DSN: store.MemoryDSN, Options: pipelineOptions()})
		defer mgr.Close() //nolint:errcheck
		s, err := mgr.Create(ctx, tables, source)
		if err != nil {
			return err
		}

		for _, sc := range scenarios {
			if _, err := s.RunScenario(ctx, sc, f, true); err != nil {
				return err
			}
		}
		lib, err := s.Library(ctx)
		if err != nil {
			return err
		}

		if outFormat == formatTable && outPath == "" {
			w := cmd.OutOrStdout()
			for _, saved := range lib {
				r := saved.Result
				headerColor.Fprintf(w, "%s\n", r.Scenario.Name) //nolint:errcheck
				fmt.Fprintf(w, "  %s %.0f -> %.0f (%s)\n",
					labelColor.Sprint("profit"), r.Base.Profit, r.Summary.Profit, signed(r.Delta.Profit))
				fmt.Fprintf(w, "  %s %s -> %s\n",
					labelColor.Sprint("cost/km"), orDash(r.Base.CostPerKm), orDash(r.Summary.CostPerKm))
			}
			fmt.Fprintln(w)
		}
		return emit(cmd, pipeline.LibraryTable(store.Results(lib)), nil)
	},
}

func init() {
	f := scenarioCmd.Flags()
	f.StringVar(&scenarioFile, "file", "", "YAML scenario definitions")
	f.StringVar(&scenarioFlag.Name, "name", scenarioFlag.Name, "scenario name")
	f.Float64Var(&scenarioFlag.Fuel, "fuel", 1, "fuel cost multiplier")
	f.Float64Var(&scenarioFlag.Maintenance, "maint", 1, "maintenance cost multiplier")
	f.Float64Var(&scenarioFlag.Labor, "labor", 1, "labor cost multiplier")
	f.Float64Var(&scenarioFlag.Overhead, "overhead", 1, "overhead cost multiplier")
	f.Float64Var(&scenarioFlag.Revenue, "revenue", 1, "revenue multiplier")
	f.Float64Var(&scenarioFlag.Volume, "volume", 1, "km and m3 multiplier")
	addFilterFlags(scenarioCmd)
	addOutputFlags(scenarioCmd)
	rootCmd.AddCommand(scenarioCmd)
}
