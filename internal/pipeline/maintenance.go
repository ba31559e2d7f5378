package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// LaborRate is the hourly rate used to cost maintenance labor.
const LaborRate = 55.0

// MaintenanceColumns is the column order of a maintenance KPI table.
var MaintenanceColumns = []string{
	model.ColEquipmentID, "event_count", "labor_hours", "parts_cost", model.ColDowntimeHours, "maint_cost",
}

// MaintenanceKPIs rolls MIR events up per equipment and sorts by downtime
// descending. Events without a work order id are not counted; undefined
// quantities are skipped in the sums.
func MaintenanceKPIs(events []model.MIREvent) []model.MaintenanceKPI {
	byEquip := make(map[string]*model.MaintenanceKPI)
	for _, e := range events {
		k, ok := byEquip[e.EquipmentID]
		if !ok {
			k = &model.MaintenanceKPI{EquipmentID: e.EquipmentID}
			byEquip[e.EquipmentID] = k
		}
		if strings.TrimSpace(e.WorkOrderID) != "" {
			k.EventCount++
		}
		k.LaborHours += e.LaborHours.Or(0)
		k.PartsCost += e.PartsCost.Or(0)
		k.DowntimeHours += e.DowntimeHours.Or(0)
	}

	out := make([]model.MaintenanceKPI, 0, len(byEquip))
	for _, k := range byEquip {
		k.MaintCost = k.PartsCost + k.LaborHours*LaborRate
		out = append(out, *k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EquipmentID < out[j].EquipmentID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DowntimeHours > out[j].DowntimeHours })
	return out
}

// MaintenanceTable encodes maintenance KPIs in MaintenanceColumns order.
func MaintenanceTable(kpis []model.MaintenanceKPI) *tabular.Table {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	t := tabular.New(MaintenanceColumns...)
	for _, k := range kpis {
		t.Append([]string{k.EquipmentID, strconv.Itoa(k.EventCount), f(k.LaborHours), f(k.PartsCost), f(k.DowntimeHours), f(k.MaintCost)})
	}
	return t
}
