// Package recommend ranks scored runs and turns their reason codes into
// action text.
package recommend

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Phrases holds the action text for each recommendation driver.
type Phrases struct {
	Fuel      string
	Downtime  string
	CostPerKm string
	CostPerHr string
	Profit    string
	Safety    string
	Fallback  string
	Separator string
}

// French is the default phrase set.
var French = Phrases{
	Fuel:      "Revoir planification des trajets + politique carburant",
	Downtime:  "Prioriser maintenance préventive (MIR) sur cet équipement",
	CostPerKm: "Analyser km à vide / charge utile / optimisation tournées",
	CostPerHr: "Analyser taux d'opération et main-d'œuvre par quart",
	Profit:    "Analyse rentabilité contrat: ajuster taux ou réduire coûts",
	Safety:    "Vérifier facteurs SST associés (formation / procédure)",
	Fallback:  "Revue opérationnelle ciblée",
	Separator: "; ",
}

// English is the phrase set for the en locale.
var English = Phrases{
	Fuel:      "Review trip planning and fuel policy",
	Downtime:  "Prioritize preventive maintenance (MIR) on this equipment",
	CostPerKm: "Analyze empty km, payload and route optimization",
	CostPerHr: "Analyze operating rate and labor per shift",
	Profit:    "Contract profitability review: adjust rates or reduce costs",
	Safety:    "Check related health and safety factors (training, procedure)",
	Fallback:  "Targeted operational review",
	Separator: "; ",
}

// ForLocale returns the phrase set for locale; anything not English is French.
func ForLocale(locale string) Phrases {
	if strings.HasPrefix(strings.ToLower(locale), "en") {
		return English
	}
	return French
}

// Actions assembles the action text for one scored run.
func (p Phrases) Actions(r *model.ScoredRun) string {
	var parts []string
	add := func(ok bool, phrase string) {
		if ok {
			parts = append(parts, phrase)
		}
	}
	add(r.HasReason(model.ReasonHighFuelShare), p.Fuel)
	add(r.HasReason(model.ReasonHighDowntime), p.Downtime)
	add(r.HasReason(model.ReasonHighCostPerKmVar), p.CostPerKm)
	add(r.HasReason(model.ReasonHighCostPerHourVar), p.CostPerHr)
	add(r.HasReason(model.ReasonNegativeProfit), p.Profit)
	add(r.HasReason(model.ReasonIncident) || r.HasReason(model.ReasonNearMiss), p.Safety)

	if len(parts) == 0 {
		return p.Fallback
	}
	return strings.Join(parts, p.Separator)
}

// Rank returns the indexes of rows ordered by risk score descending, then
// profit ascending with undefined profit after defined, then input order.
func Rank(rows []model.ScoredRun) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := &rows[idx[a]], &rows[idx[b]]
		if ra.RiskScore != rb.RiskScore {
			return ra.RiskScore > rb.RiskScore
		}
		if ra.Profit.Valid != rb.Profit.Valid {
			return ra.Profit.Valid
		}
		return ra.Profit.Valid && ra.Profit.Value < rb.Profit.Value
	})
	return idx
}

// Build selects the top n rows by Rank and projects them into recommendations.
// A negative n selects every row.
func Build(rows []model.ScoredRun, n int, p Phrases) []model.Recommendation {
	idx := Rank(rows)
	if n >= 0 && n < len(idx) {
		idx = idx[:n]
	}

	out := make([]model.Recommendation, len(idx))
	for i, j := range idx {
		r := &rows[j]
		out[i] = model.Recommendation{
			Date:               r.Date,
			Subsidiary:         r.Subsidiary,
			Activity:           r.Activity,
			Contract:           r.Contract,
			Team:               r.Team,
			EquipmentID:        r.EquipmentID,
			RiskLevel:          r.RiskLevel,
			RiskScore:          r.RiskScore,
			Profit:             r.Profit,
			CostPerKm:          r.CostPerKm,
			CostPerHour:        r.CostPerHour,
			DowntimeHours:      r.DowntimeHours,
			RecommendedActions: p.Actions(r),
		}
	}
	return out
}

// Table encodes recommendations in model.RecommendationColumns order.
func Table(recs []model.Recommendation) *tabular.Table {
	t := tabular.New(model.RecommendationColumns...)
	for _, r := range recs {
		t.Append([]string{
			r.Date.String(), r.Subsidiary, r.Activity, r.Contract, r.Team, r.EquipmentID,
			string(r.RiskLevel), strconv.FormatFloat(r.RiskScore, 'f', -1, 64),
			r.Profit.String(), r.CostPerKm.String(), r.CostPerHour.String(),
			r.DowntimeHours.String(), r.RecommendedActions,
		})
	}
	return t
}
