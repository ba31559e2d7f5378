package variance

import "github.com/sells-group/ops-cockpit/internal/model"

// Join left-joins rows to targets on subsidiary and activity and computes the
// variances. Row count and order are preserved. Rows without a target keep
// undefined target and variance fields. When targets repeat a group, the first
// one wins. The input slice is not modified.
func Join(rows []model.ScoredRun, targets []model.Target) []model.ScoredRun {
	byGroup := make(map[model.GroupKey]model.Target, len(targets))
	for _, t := range targets {
		if _, ok := byGroup[t.Group()]; !ok {
			byGroup[t.Group()] = t
		}
	}

	out := make([]model.ScoredRun, len(rows))
	for i, r := range rows {
		tg := byGroup[r.Group()]
		r.TargetCPH, r.TargetCPKm, r.TargetCPM3 = tg.TargetCPH, tg.TargetCPKm, tg.TargetCPM3

		r.VarCPH = r.CostPerHour.Sub(r.TargetCPH)
		r.VarCPKm = r.CostPerKm.Sub(r.TargetCPKm)
		r.VarCPM3 = r.CostPerM3.Sub(r.TargetCPM3)

		r.VarCPHPct = model.SafeDiv(r.VarCPH, r.TargetCPH)
		r.VarCPKmPct = model.SafeDiv(r.VarCPKm, r.TargetCPKm)
		r.VarCPM3Pct = model.SafeDiv(r.VarCPM3, r.TargetCPM3)
		out[i] = r
	}
	return out
}
