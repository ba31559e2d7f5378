package kpi

import (
	"sort"
	"strconv"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// GroupVariance rolls scored runs up by subsidiary, activity, contract and
// equipment.
type GroupVariance struct {
	Subsidiary    string      `json:"subsidiary"`
	Activity      string      `json:"activity"`
	Contract      string      `json:"contract"`
	EquipmentID   string      `json:"equipment_id"`
	Runs          int         `json:"runs"`
	Revenue       float64     `json:"revenue"`
	TotalCost     float64     `json:"total_cost"`
	Profit        float64     `json:"profit"`
	CostPerKm     model.Float `json:"cost_per_km"`
	CostPerHour   model.Float `json:"cost_per_hour"`
	CostPerM3     model.Float `json:"cost_per_m3"`
	VarCPKmPct    model.Float `json:"var_cpkm_pct"`
	VarCPHPct     model.Float `json:"var_cph_pct"`
	DowntimeHours float64     `json:"downtime_hours"`
	RiskScore     float64     `json:"risk_score"`
}

// GroupColumns is the column order of a group variance table.
var GroupColumns = []string{
	model.ColSubsidiary, model.ColActivity, model.ColContract, model.ColEquipmentID, "runs",
	model.ColRevenue, "total_cost", "profit",
	"cost_per_km", "cost_per_hour", "cost_per_m3",
	"var_cpkm_pct", "var_cph_pct", model.ColDowntimeHours, "risk_score",
}

type groupKey struct {
	sub, act, ctr, eq string
}

type groupAcc struct {
	g                       GroupVariance
	cpkm, cph, cpm3         []model.Float
	varCPKm, varCPH, scores []model.Float
}

// Aggregate groups scored rows and sorts the groups by mean risk score
// descending, then summed profit ascending. Equal groups keep key order.
func Aggregate(rows []model.ScoredRun) []GroupVariance {
	accs := make(map[groupKey]*groupAcc)
	for i := range rows {
		r := &rows[i]
		k := groupKey{r.Subsidiary, r.Activity, r.Contract, r.EquipmentID}
		a, ok := accs[k]
		if !ok {
			a = &groupAcc{g: GroupVariance{
				Subsidiary: k.sub, Activity: k.act, Contract: k.ctr, EquipmentID: k.eq,
			}}
			accs[k] = a
		}
		a.g.Runs++
		a.g.Revenue += r.Revenue.Or(0)
		a.g.TotalCost += r.TotalCost.Or(0)
		a.g.Profit += r.Profit.Or(0)
		a.g.DowntimeHours += r.DowntimeHours.Or(0)
		a.cpkm = append(a.cpkm, r.CostPerKm)
		a.cph = append(a.cph, r.CostPerHour)
		a.cpm3 = append(a.cpm3, r.CostPerM3)
		a.varCPKm = append(a.varCPKm, r.VarCPKmPct)
		a.varCPH = append(a.varCPH, r.VarCPHPct)
		a.scores = append(a.scores, model.Some(r.RiskScore))
	}

	out := make([]GroupVariance, 0, len(accs))
	for _, a := range accs {
		a.g.CostPerKm = Median(a.cpkm)
		a.g.CostPerHour = Median(a.cph)
		a.g.CostPerM3 = Median(a.cpm3)
		a.g.VarCPKmPct = Mean(a.varCPKm)
		a.g.VarCPHPct = Mean(a.varCPH)
		a.g.RiskScore = Mean(a.scores).Or(0)
		out = append(out, a.g)
	}

	sort.Slice(out, func(i, j int) bool { return lessKey(out[i], out[j]) })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].Profit < out[j].Profit
	})
	return out
}

func lessKey(a, b GroupVariance) bool {
	if a.Subsidiary != b.Subsidiary {
		return a.Subsidiary < b.Subsidiary
	}
	if a.Activity != b.Activity {
		return a.Activity < b.Activity
	}
	if a.Contract != b.Contract {
		return a.Contract < b.Contract
	}
	return a.EquipmentID < b.EquipmentID
}

// GroupTable encodes group variances in GroupColumns order.
func GroupTable(groups []GroupVariance) *tabular.Table {
	t := tabular.New(GroupColumns...)
	for _, g := range groups {
		t.Append([]string{
			g.Subsidiary, g.Activity, g.Contract, g.EquipmentID, strconv.Itoa(g.Runs),
			formatFloat(g.Revenue), formatFloat(g.TotalCost), formatFloat(g.Profit),
			g.CostPerKm.String(), g.CostPerHour.String(), g.CostPerM3.String(),
			g.VarCPKmPct.String(), g.VarCPHPct.String(),
			formatFloat(g.DowntimeHours), formatFloat(g.RiskScore),
		})
	}
	return t
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
