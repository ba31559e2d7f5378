package model

// Canonical operational run columns.
const (
	ColDate            = "date"
	ColSubsidiary      = "subsidiary"
	ColActivity        = "activity"
	ColContract        = "contract"
	ColTeam            = "team"
	ColEquipmentID     = "equipment_id"
	ColHoursOperated   = "hours_operated"
	ColKmDriven        = "km_driven"
	ColM3Moved         = "m3_moved"
	ColRevenue         = "revenue"
	ColFuelCost        = "fuel_cost"
	ColLaborCost       = "labor_cost"
	ColMaintenanceCost = "maintenance_cost"
	ColOverheadCost    = "overhead_cost"
	ColDowntimeHours   = "downtime_hours"
	ColIncidentCount   = "incident_count"
	ColNearMissCount   = "near_miss_count"
)

// Target columns.
const (
	ColTargetCPH  = "target_cph"
	ColTargetCPKm = "target_cpkm"
	ColTargetCPM3 = "target_cpm3"
)

// OpsColumns is the canonical column order of an operational runs table.
var OpsColumns = []string{
	ColDate, ColSubsidiary, ColActivity, ColContract, ColTeam, ColEquipmentID,
	ColHoursOperated, ColKmDriven, ColM3Moved, ColRevenue,
	ColFuelCost, ColLaborCost, ColMaintenanceCost, ColOverheadCost,
	ColDowntimeHours, ColIncidentCount, ColNearMissCount,
}

// OpsRequired lists the columns an operational runs table must carry.
// The safety counters are optional.
var OpsRequired = OpsColumns[:15:15]

// OpsNumeric lists the required numeric run columns.
var OpsNumeric = []string{
	ColHoursOperated, ColKmDriven, ColM3Moved, ColRevenue,
	ColFuelCost, ColLaborCost, ColMaintenanceCost, ColOverheadCost,
	ColDowntimeHours,
}

// OpsKey is the natural key of a run.
var OpsKey = []string{ColDate, ColSubsidiary, ColActivity, ColContract, ColEquipmentID}

// TargetColumns is the column order of a targets table.
var TargetColumns = []string{ColSubsidiary, ColActivity, ColTargetCPH, ColTargetCPKm, ColTargetCPM3}

// ScoredColumns is the column order of the scored variance table: run columns,
// derived KPIs, targets, variances, then risk.
var ScoredColumns = append(append([]string{}, OpsColumns...),
	"total_cost", "profit", "margin",
	"cost_per_hour", "cost_per_km", "cost_per_m3",
	"fuel_share", "maint_share", "labor_share", "utilization",
	ColTargetCPH, ColTargetCPKm, ColTargetCPM3,
	"var_cph", "var_cpkm", "var_cpm3",
	"var_cph_pct", "var_cpkm_pct", "var_cpm3_pct",
	"risk_score", "reason_codes", "risk_level",
)

// RecommendationColumns is the fixed recommendation projection.
var RecommendationColumns = []string{
	ColDate, ColSubsidiary, ColActivity, ColContract, ColTeam, ColEquipmentID,
	"risk_level", "risk_score", "profit", "cost_per_km", "cost_per_hour",
	ColDowntimeHours, "recommended_actions",
}

// CAPA columns.
var CAPAColumns = []string{
	"capa_id", "created_date", "issue_type", "priority",
	ColSubsidiary, ColActivity, ColContract, ColEquipmentID,
	"owner", "due_date", "status", "root_cause", "action_plan", "expected_impact",
}

// CAPARequired lists the columns a CAPA table must carry.
var CAPARequired = CAPAColumns[:11:11]

// MIR (maintenance event) columns.
var MIRColumns = []string{
	ColEquipmentID, "event_date", "event_type", "work_order_id",
	"labor_hours", "parts_cost", ColDowntimeHours, "failure_mode",
}

// MIRRequired lists the columns a MIR table must carry.
var MIRRequired = MIRColumns[:7:7]
