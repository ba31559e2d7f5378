// Package kpi coerces run tables into typed records and derives per-run cost
// and profitability metrics.
package kpi

import (
	"strings"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// MissingColumnsError is returned when a table lacks columns the KPI schema
// needs. It is the only way the KPI chain refuses to produce output.
type MissingColumnsError struct {
	Dataset string
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "kpi: " + e.Dataset + " table missing required columns: " + strings.Join(e.Columns, ", ")
}

// ParseRuns coerces a canonical runs table into typed runs. Blank or
// non-coercible values become undefined; rows are never dropped.
func ParseRuns(t *tabular.Table) ([]model.Run, error) {
	if missing := t.Missing(model.OpsRequired); len(missing) > 0 {
		return nil, &MissingColumnsError{Dataset: "runs", Columns: missing}
	}

	idx := make(map[string]int, len(model.OpsColumns))
	for _, c := range model.OpsColumns {
		idx[c] = t.Index(c)
	}
	str := func(i int, c string) string { return strings.TrimSpace(t.Cell(i, idx[c])) }
	num := func(i int, c string) model.Float { return model.ParseFloat(t.Cell(i, idx[c])) }

	runs := make([]model.Run, t.Len())
	for i := range runs {
		runs[i] = model.Run{
			Date:            model.ParseDate(t.Cell(i, idx[model.ColDate])),
			Subsidiary:      str(i, model.ColSubsidiary),
			Activity:        str(i, model.ColActivity),
			Contract:        str(i, model.ColContract),
			Team:            str(i, model.ColTeam),
			EquipmentID:     str(i, model.ColEquipmentID),
			HoursOperated:   num(i, model.ColHoursOperated),
			KmDriven:        num(i, model.ColKmDriven),
			M3Moved:         num(i, model.ColM3Moved),
			Revenue:         num(i, model.ColRevenue),
			FuelCost:        num(i, model.ColFuelCost),
			LaborCost:       num(i, model.ColLaborCost),
			MaintenanceCost: num(i, model.ColMaintenanceCost),
			OverheadCost:    num(i, model.ColOverheadCost),
			DowntimeHours:   num(i, model.ColDowntimeHours),
			IncidentCount:   num(i, model.ColIncidentCount),
			NearMissCount:   num(i, model.ColNearMissCount),
		}
	}
	return runs, nil
}

// ParseMIR coerces a maintenance event table into typed events.
func ParseMIR(t *tabular.Table) ([]model.MIREvent, error) {
	if missing := t.Missing(model.MIRRequired); len(missing) > 0 {
		return nil, &MissingColumnsError{Dataset: "mir", Columns: missing}
	}

	idx := make(map[string]int, len(model.MIRColumns))
	for _, c := range model.MIRColumns {
		idx[c] = t.Index(c)
	}
	cell := func(i int, c string) string { return t.Cell(i, idx[c]) }

	events := make([]model.MIREvent, t.Len())
	for i := range events {
		events[i] = model.MIREvent{
			EquipmentID:   strings.TrimSpace(cell(i, model.ColEquipmentID)),
			EventDate:     model.ParseDate(cell(i, "event_date")),
			EventType:     cell(i, "event_type"),
			WorkOrderID:   cell(i, "work_order_id"),
			LaborHours:    model.ParseFloat(cell(i, "labor_hours")),
			PartsCost:     model.ParseFloat(cell(i, "parts_cost")),
			DowntimeHours: model.ParseFloat(cell(i, model.ColDowntimeHours)),
			FailureMode:   cell(i, "failure_mode"),
		}
	}
	return events, nil
}

// ParseCAPA reads a CAPA table into actions. Optional trailing columns may be absent.
func ParseCAPA(t *tabular.Table) ([]model.CAPAAction, error) {
	if missing := t.Missing(model.CAPARequired); len(missing) > 0 {
		return nil, &MissingColumnsError{Dataset: "capa", Columns: missing}
	}

	idx := make([]int, len(model.CAPAColumns))
	for i, c := range model.CAPAColumns {
		idx[i] = t.Index(c)
	}

	out := make([]model.CAPAAction, t.Len())
	for i := range out {
		v := make([]string, len(idx))
		for j, k := range idx {
			v[j] = t.Cell(i, k)
		}
		out[i] = model.CAPAAction{
			ID: v[0], CreatedDate: v[1], IssueType: v[2], Priority: v[3],
			Subsidiary: v[4], Activity: v[5], Contract: v[6], EquipmentID: v[7],
			Owner: v[8], DueDate: v[9], Status: v[10],
			RootCause: v[11], ActionPlan: v[12], ExpectedImpact: v[13],
		}
	}
	return out, nil
}
