package pipeline

import (
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Scenario is a what-if set of multipliers applied to the runs before the KPI
// engine. Volume scales both km driven and m3 moved.
type Scenario struct {
	Name        string  `yaml:"name" json:"name"`
	Fuel        float64 `yaml:"mult_fuel" json:"mult_fuel"`
	Maintenance float64 `yaml:"mult_maint" json:"mult_maint"`
	Labor       float64 `yaml:"mult_labor" json:"mult_labor"`
	Overhead    float64 `yaml:"mult_over" json:"mult_over"`
	Revenue     float64 `yaml:"mult_rev" json:"mult_rev"`
	Volume      float64 `yaml:"mult_vol" json:"mult_vol"`
}

// NeutralScenario returns a scenario whose multipliers are all 1.
func NeutralScenario(name string) Scenario {
	return Scenario{Name: name, Fuel: 1, Maintenance: 1, Labor: 1, Overhead: 1, Revenue: 1, Volume: 1}
}

func (s *Scenario) fillDefaults() {
	for _, m := range []*float64{&s.Fuel, &s.Maintenance, &s.Labor, &s.Overhead, &s.Revenue, &s.Volume} {
		if *m == 0 {
			*m = 1
		}
	}
}

// Validate checks the scenario has a name and positive multipliers.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return eris.New("pipeline: scenario name is required")
	}
	mults := []float64{s.Fuel, s.Maintenance, s.Labor, s.Overhead, s.Revenue, s.Volume}
	for i, m := range mults {
		if m <= 0 {
			return eris.Errorf("pipeline: scenario %q: %s must be positive, got %v", s.Name, LibraryColumns[4+i], m)
		}
	}
	return nil
}

// Apply returns a copy of runs with the multipliers applied.
func (s Scenario) Apply(runs []model.Run) []model.Run {
	out := make([]model.Run, len(runs))
	for i, r := range runs {
		r.FuelCost = r.FuelCost.Scale(s.Fuel)
		r.MaintenanceCost = r.MaintenanceCost.Scale(s.Maintenance)
		r.LaborCost = r.LaborCost.Scale(s.Labor)
		r.OverheadCost = r.OverheadCost.Scale(s.Overhead)
		r.Revenue = r.Revenue.Scale(s.Revenue)
		r.KmDriven = r.KmDriven.Scale(s.Volume)
		r.M3Moved = r.M3Moved.Scale(s.Volume)
		out[i] = r
	}
	return out
}

// Delta is a scenario summary minus the base summary.
type Delta struct {
	Profit    float64     `json:"profit"`
	TotalCost float64     `json:"total_cost"`
	CostPerKm model.Float `json:"cost_per_km"`
	Margin    model.Float `json:"margin"`
}

// ScenarioResult compares a scenario against the base runs.
type ScenarioResult struct {
	Scenario Scenario    `json:"scenario"`
	Base     kpi.Summary `json:"base"`
	Summary  kpi.Summary `json:"summary"`
	Delta    Delta       `json:"delta"`
}

// RunScenario recomputes the KPI summary of runs under s.
func RunScenario(runs []model.Run, s Scenario) ScenarioResult {
	base := kpi.Summarize(kpi.Compute(runs))
	sum := kpi.Summarize(kpi.Compute(s.Apply(runs)))
	return ScenarioResult{
		Scenario: s,
		Base:     base,
		Summary:  sum,
		Delta: Delta{
			Profit:    sum.Profit - base.Profit,
			TotalCost: sum.TotalCost - base.TotalCost,
			CostPerKm: sum.CostPerKm.Sub(base.CostPerKm),
			Margin:    sum.Margin.Sub(base.Margin),
		},
	}
}

// LoadScenarios reads scenario definitions from a YAML file with a top-level
// "scenarios" key. Omitted multipliers default to 1.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read scenarios %s", path)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes scenario YAML.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var wrapper struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse scenarios")
	}
	for i := range wrapper.Scenarios {
		wrapper.Scenarios[i].fillDefaults()
		if err := wrapper.Scenarios[i].Validate(); err != nil {
			return nil, err
		}
	}
	return wrapper.Scenarios, nil
}

// LibraryColumns is the column order of an exported scenario library.
var LibraryColumns = []string{
	"name", "profit", "total_cost", "margin",
	"mult_fuel", "mult_maint", "mult_labor", "mult_over", "mult_rev", "mult_vol",
}

// LibraryTable encodes saved scenario results.
func LibraryTable(results []ScenarioResult) *tabular.Table {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	t := tabular.New(LibraryColumns...)
	for _, r := range results {
		s := r.Scenario
		t.Append([]string{
			s.Name, f(r.Summary.Profit), f(r.Summary.TotalCost), r.Summary.Margin.String(),
			f(s.Fuel), f(s.Maintenance), f(s.Labor), f(s.Overhead), f(s.Revenue), f(s.Volume),
		})
	}
	return t
}
