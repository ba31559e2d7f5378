// Package variance builds group cost targets and joins them onto scored runs.
package variance

import (
	"strings"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// DefaultFactor tightens historical medians into an improvement goal.
const DefaultFactor = 0.95

// BuildTargets groups rows by subsidiary and activity, in first-seen order,
// and scales each group's median cost per hour, km and m3 by factor. A group
// with no defined ratio gets an undefined target for it.
func BuildTargets(rows []model.ScoredRun, factor float64) []model.Target {
	type acc struct {
		cph, cpkm, cpm3 []model.Float
	}
	groups := make(map[model.GroupKey]*acc)
	var order []model.GroupKey
	for i := range rows {
		r := &rows[i]
		k := r.Group()
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			order = append(order, k)
		}
		a.cph = append(a.cph, r.CostPerHour)
		a.cpkm = append(a.cpkm, r.CostPerKm)
		a.cpm3 = append(a.cpm3, r.CostPerM3)
	}

	out := make([]model.Target, len(order))
	for i, k := range order {
		a := groups[k]
		out[i] = model.Target{
			Subsidiary: k.Subsidiary,
			Activity:   k.Activity,
			TargetCPH:  kpi.Median(a.cph).Scale(factor),
			TargetCPKm: kpi.Median(a.cpkm).Scale(factor),
			TargetCPM3: kpi.Median(a.cpm3).Scale(factor),
		}
	}
	return out
}

// ParseTargets reads an imported targets table.
func ParseTargets(t *tabular.Table) ([]model.Target, error) {
	if missing := t.Missing(model.TargetColumns); len(missing) > 0 {
		return nil, &kpi.MissingColumnsError{Dataset: "targets", Columns: missing}
	}
	sub, act := t.Index(model.ColSubsidiary), t.Index(model.ColActivity)
	cph, cpkm, cpm3 := t.Index(model.ColTargetCPH), t.Index(model.ColTargetCPKm), t.Index(model.ColTargetCPM3)

	out := make([]model.Target, t.Len())
	for i := range out {
		out[i] = model.Target{
			Subsidiary: strings.TrimSpace(t.Cell(i, sub)),
			Activity:   strings.TrimSpace(t.Cell(i, act)),
			TargetCPH:  model.ParseFloat(t.Cell(i, cph)),
			TargetCPKm: model.ParseFloat(t.Cell(i, cpkm)),
			TargetCPM3: model.ParseFloat(t.Cell(i, cpm3)),
		}
	}
	return out, nil
}

// TargetsTable encodes targets in model.TargetColumns order.
func TargetsTable(targets []model.Target) *tabular.Table {
	t := tabular.New(model.TargetColumns...)
	for _, tg := range targets {
		t.Append([]string{tg.Subsidiary, tg.Activity, tg.TargetCPH.String(), tg.TargetCPKm.String(), tg.TargetCPM3.String()})
	}
	return t
}
