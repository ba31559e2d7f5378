package pipeline

import (
	"fmt"
	"time"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/risk"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// CAPA proposal defaults.
const (
	ProposalCount    = 10
	ProposalOwner    = "Opérations"
	ProposalDueDays  = 14
	ProposalStatus   = "Open"
	ProposalIssue    = "cost_variance"
	proposalIDFormat = "AUTO-%s-%02d"
)

// ProposeCAPA drafts one corrective action per group for the first n groups,
// which are expected in Aggregate order. Groups at or above the High risk
// threshold get High priority, the rest Medium.
func ProposeCAPA(groups []kpi.GroupVariance, today time.Time, n int) []model.CAPAAction {
	if n >= 0 && n < len(groups) {
		groups = groups[:n]
	}
	created := today.Format(model.DateLayout)
	due := today.AddDate(0, 0, ProposalDueDays).Format(model.DateLayout)
	stamp := today.Format("20060102")

	out := make([]model.CAPAAction, len(groups))
	for i, g := range groups {
		priority := string(model.RiskMedium)
		if g.RiskScore >= risk.HighAt {
			priority = string(model.RiskHigh)
		}
		out[i] = model.CAPAAction{
			ID:          fmt.Sprintf(proposalIDFormat, stamp, i+1),
			CreatedDate: created,
			IssueType:   ProposalIssue,
			Priority:    priority,
			Subsidiary:  g.Subsidiary,
			Activity:    g.Activity,
			Contract:    g.Contract,
			EquipmentID: g.EquipmentID,
			Owner:       ProposalOwner,
			DueDate:     due,
			Status:      ProposalStatus,
		}
	}
	return out
}

// CAPATable encodes actions in model.CAPAColumns order.
func CAPATable(actions []model.CAPAAction) *tabular.Table {
	t := tabular.New(model.CAPAColumns...)
	for _, a := range actions {
		t.Append(a.Row())
	}
	return t
}

// AppendCAPA returns capa with the actions appended. A nil capa table starts
// from the canonical header.
func AppendCAPA(capa *tabular.Table, actions []model.CAPAAction) *tabular.Table {
	if capa == nil || len(capa.Columns) == 0 {
		return CAPATable(actions)
	}
	return capa.Concat(CAPATable(actions))
}
