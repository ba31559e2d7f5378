// Package model defines the typed records that flow through the cockpit pipeline.
package model

import "strings"

// Run is one operational record for one equipment/activity/day/contract combination.
type Run struct {
	Date        Date   `json:"date"`
	Subsidiary  string `json:"subsidiary"`
	Activity    string `json:"activity"`
	Contract    string `json:"contract"`
	Team        string `json:"team"`
	EquipmentID string `json:"equipment_id"`

	HoursOperated   Float `json:"hours_operated"`
	KmDriven        Float `json:"km_driven"`
	M3Moved         Float `json:"m3_moved"`
	Revenue         Float `json:"revenue"`
	FuelCost        Float `json:"fuel_cost"`
	LaborCost       Float `json:"labor_cost"`
	MaintenanceCost Float `json:"maintenance_cost"`
	OverheadCost    Float `json:"overhead_cost"`
	DowntimeHours   Float `json:"downtime_hours"`
	IncidentCount   Float `json:"incident_count"`
	NearMissCount   Float `json:"near_miss_count"`
}

// GroupKey identifies a subsidiary x activity target group.
type GroupKey struct {
	Subsidiary string
	Activity   string
}

// Group returns the target group of the run.
func (r Run) Group() GroupKey {
	return GroupKey{Subsidiary: r.Subsidiary, Activity: r.Activity}
}

// Target is the group-level cost benchmark for a subsidiary x activity pair.
type Target struct {
	Subsidiary string `json:"subsidiary"`
	Activity   string `json:"activity"`
	TargetCPH  Float  `json:"target_cph"`
	TargetCPKm Float  `json:"target_cpkm"`
	TargetCPM3 Float  `json:"target_cpm3"`
}

// Group returns the target group key.
func (t Target) Group() GroupKey {
	return GroupKey{Subsidiary: t.Subsidiary, Activity: t.Activity}
}

// RiskLevel is the ordinal category derived from a risk score.
type RiskLevel string

// Risk levels, lowest to highest.
const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// ReasonCode tags a risk heuristic that fired for a run.
type ReasonCode string

// Reason codes in rule evaluation order.
const (
	ReasonNegativeProfit     ReasonCode = "negative_profit"
	ReasonHighCostPerKmVar   ReasonCode = "high_cost_per_km_variance"
	ReasonHighCostPerHourVar ReasonCode = "high_cost_per_hour_variance"
	ReasonHighDowntime       ReasonCode = "high_downtime"
	ReasonHighFuelShare      ReasonCode = "high_fuel_share"
	ReasonIncident           ReasonCode = "incident"
	ReasonNearMiss           ReasonCode = "near_miss"
)

// ScoredRun is a Run extended with KPIs, target variances, and risk.
type ScoredRun struct {
	Run

	TotalCost   Float `json:"total_cost"`
	Profit      Float `json:"profit"`
	Margin      Float `json:"margin"`
	CostPerHour Float `json:"cost_per_hour"`
	CostPerKm   Float `json:"cost_per_km"`
	CostPerM3   Float `json:"cost_per_m3"`
	FuelShare   Float `json:"fuel_share"`
	MaintShare  Float `json:"maint_share"`
	LaborShare  Float `json:"labor_share"`
	Utilization Float `json:"utilization"`

	TargetCPH  Float `json:"target_cph"`
	TargetCPKm Float `json:"target_cpkm"`
	TargetCPM3 Float `json:"target_cpm3"`
	VarCPH     Float `json:"var_cph"`
	VarCPKm    Float `json:"var_cpkm"`
	VarCPM3    Float `json:"var_cpm3"`
	VarCPHPct  Float `json:"var_cph_pct"`
	VarCPKmPct Float `json:"var_cpkm_pct"`
	VarCPM3Pct Float `json:"var_cpm3_pct"`

	RiskScore   float64      `json:"risk_score"`
	RiskLevel   RiskLevel    `json:"risk_level"`
	ReasonCodes []ReasonCode `json:"reason_codes"`
}

// HasReason reports whether code fired for the run.
func (s *ScoredRun) HasReason(code ReasonCode) bool {
	for _, c := range s.ReasonCodes {
		if c == code {
			return true
		}
	}
	return false
}

// JoinReasons renders reason codes as a comma-separated list.
func JoinReasons(codes []ReasonCode) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// Recommendation is the read-only action projection of a ScoredRun.
type Recommendation struct {
	Date               Date      `json:"date"`
	Subsidiary         string    `json:"subsidiary"`
	Activity           string    `json:"activity"`
	Contract           string    `json:"contract"`
	Team               string    `json:"team"`
	EquipmentID        string    `json:"equipment_id"`
	RiskLevel          RiskLevel `json:"risk_level"`
	RiskScore          float64   `json:"risk_score"`
	Profit             Float     `json:"profit"`
	CostPerKm          Float     `json:"cost_per_km"`
	CostPerHour        Float     `json:"cost_per_hour"`
	DowntimeHours      Float     `json:"downtime_hours"`
	RecommendedActions string    `json:"recommended_actions"`
}
