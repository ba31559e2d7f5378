package kpi

import "github.com/sells-group/ops-cockpit/internal/model"

// Compute derives KPI fields for every run. Output order matches input order
// and the input slice is not modified.
func Compute(runs []model.Run) []model.ScoredRun {
	out := make([]model.ScoredRun, len(runs))
	for i, r := range runs {
		out[i] = Derive(r)
	}
	return out
}

// Derive computes the KPI fields of a single run. Missing cost components
// count as zero in total_cost; every ratio goes through model.SafeDiv.
func Derive(r model.Run) model.ScoredRun {
	s := model.ScoredRun{Run: r}

	s.TotalCost = model.SumDefined(r.FuelCost, r.LaborCost, r.MaintenanceCost, r.OverheadCost)
	s.Profit = r.Revenue.Sub(s.TotalCost)
	s.Margin = model.SafeDiv(s.Profit, r.Revenue)

	s.CostPerHour = model.SafeDiv(s.TotalCost, r.HoursOperated)
	s.CostPerKm = model.SafeDiv(s.TotalCost, r.KmDriven)
	s.CostPerM3 = model.SafeDiv(s.TotalCost, r.M3Moved)

	s.FuelShare = model.SafeDiv(r.FuelCost, s.TotalCost)
	s.MaintShare = model.SafeDiv(r.MaintenanceCost, s.TotalCost)
	s.LaborShare = model.SafeDiv(r.LaborCost, s.TotalCost)

	s.Utilization = model.SafeDiv(r.HoursOperated, r.HoursOperated.Add(r.DowntimeHours))
	return s
}
