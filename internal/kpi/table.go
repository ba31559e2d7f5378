package kpi

import (
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

func runRow(r model.Run) []string {
	return []string{
		r.Date.String(), r.Subsidiary, r.Activity, r.Contract, r.Team, r.EquipmentID,
		r.HoursOperated.String(), r.KmDriven.String(), r.M3Moved.String(), r.Revenue.String(),
		r.FuelCost.String(), r.LaborCost.String(), r.MaintenanceCost.String(), r.OverheadCost.String(),
		r.DowntimeHours.String(), r.IncidentCount.String(), r.NearMissCount.String(),
	}
}

// RunsTable encodes runs in canonical column order.
func RunsTable(runs []model.Run) *tabular.Table {
	t := tabular.New(model.OpsColumns...)
	for _, r := range runs {
		t.Append(runRow(r))
	}
	return t
}

// ScoredTable encodes scored runs in model.ScoredColumns order.
func ScoredTable(rows []model.ScoredRun) *tabular.Table {
	t := tabular.New(model.ScoredColumns...)
	for i := range rows {
		s := &rows[i]
		row := runRow(s.Run)
		row = append(row,
			s.TotalCost.String(), s.Profit.String(), s.Margin.String(),
			s.CostPerHour.String(), s.CostPerKm.String(), s.CostPerM3.String(),
			s.FuelShare.String(), s.MaintShare.String(), s.LaborShare.String(), s.Utilization.String(),
			s.TargetCPH.String(), s.TargetCPKm.String(), s.TargetCPM3.String(),
			s.VarCPH.String(), s.VarCPKm.String(), s.VarCPM3.String(),
			s.VarCPHPct.String(), s.VarCPKmPct.String(), s.VarCPM3Pct.String(),
			formatFloat(s.RiskScore), model.JoinReasons(s.ReasonCodes), string(s.RiskLevel),
		)
		t.Append(row)
	}
	return t
}
