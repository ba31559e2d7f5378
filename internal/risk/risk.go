// Package risk scores runs with a fixed, ordered set of additive heuristics.
package risk

import "github.com/sells-group/ops-cockpit/internal/model"

// Level thresholds on the clamped score.
const (
	CriticalAt = 75.0
	HighAt     = 55.0
	MediumAt   = 30.0
	MaxScore   = 100.0
)

// Rule is one weighted heuristic. Match must return false when any operand it
// compares is undefined.
type Rule struct {
	Tag    model.ReasonCode
	Points float64
	Match  func(r *model.ScoredRun) bool
}

// rules are evaluated in this order; reason codes follow it.
var rules = []Rule{
	{model.ReasonNegativeProfit, 35, func(r *model.ScoredRun) bool {
		return r.Profit.Lt(0)
	}},
	{model.ReasonHighCostPerKmVar, 20, func(r *model.ScoredRun) bool {
		return r.VarCPKmPct.Gt(0.12)
	}},
	{model.ReasonHighCostPerHourVar, 20, func(r *model.ScoredRun) bool {
		return r.VarCPHPct.Gt(0.12)
	}},
	{model.ReasonHighDowntime, 15, func(r *model.ScoredRun) bool {
		return model.SafeDiv(r.DowntimeHours, r.HoursOperated).Gt(0.15)
	}},
	{model.ReasonHighFuelShare, 10, func(r *model.ScoredRun) bool {
		return r.FuelShare.Gt(0.42)
	}},
	{model.ReasonIncident, 10, func(r *model.ScoredRun) bool {
		return r.IncidentCount.Gt(0)
	}},
	{model.ReasonNearMiss, 5, func(r *model.ScoredRun) bool {
		return r.NearMissCount.Gt(0)
	}},
}

// Score sums the points of every rule r triggers, clamped to [0, 100], and
// returns the tags in rule order.
func Score(r *model.ScoredRun) (float64, []model.ReasonCode) {
	score := 0.0
	reasons := []model.ReasonCode{}
	for _, rule := range rules {
		if rule.Match(r) {
			score += rule.Points
			reasons = append(reasons, rule.Tag)
		}
	}
	return clamp(score), reasons
}

func clamp(x float64) float64 {
	return max(0, min(MaxScore, x))
}

// LevelFor maps a score to its risk level.
func LevelFor(score float64) model.RiskLevel {
	switch {
	case score >= CriticalAt:
		return model.RiskCritical
	case score >= HighAt:
		return model.RiskHigh
	case score >= MediumAt:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Apply returns a copy of rows with risk score, level and reason codes set.
func Apply(rows []model.ScoredRun) []model.ScoredRun {
	out := make([]model.ScoredRun, len(rows))
	for i, r := range rows {
		r.RiskScore, r.ReasonCodes = Score(&r)
		r.RiskLevel = LevelFor(r.RiskScore)
		out[i] = r
	}
	return out
}
