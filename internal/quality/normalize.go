// Package quality normalizes imported headers and reports data-quality issues.
package quality

import (
	"strings"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// synonyms maps trimmed, lower-cased header spellings to canonical names.
var synonyms = map[string]string{
	"equip":       model.ColEquipmentID,
	"equipment":   model.ColEquipmentID,
	"equip_id":    model.ColEquipmentID,
	"heure":       model.ColHoursOperated,
	"hours":       model.ColHoursOperated,
	"heures":      model.ColHoursOperated,
	"km":          model.ColKmDriven,
	"kilometres":  model.ColKmDriven,
	"m3":          model.ColM3Moved,
	"volume_m3":   model.ColM3Moved,
	"revenus":     model.ColRevenue,
	"fuel":        model.ColFuelCost,
	"carburant":   model.ColFuelCost,
	"main_oeuvre": model.ColLaborCost,
	"labor":       model.ColLaborCost,
	"maintenance": model.ColMaintenanceCost,
	"overhead":    model.ColOverheadCost,
	"frais_fixes": model.ColOverheadCost,
	"downtime":    model.ColDowntimeHours,
}

// CanonicalName returns the canonical column for header, or header unchanged.
func CanonicalName(header string) string {
	if c, ok := synonyms[strings.ToLower(strings.TrimSpace(header))]; ok {
		return c
	}
	return header
}

// Normalize returns a copy of t with known header synonyms renamed.
// Values are not touched and unknown headers pass through.
func Normalize(t *tabular.Table) *tabular.Table {
	out := t.Clone()
	if out == nil {
		return nil
	}
	for i, c := range out.Columns {
		out.Columns[i] = CanonicalName(c)
	}
	return out
}
