package model

// CAPAAction is a corrective/preventive action tracked against a run group.
type CAPAAction struct {
	ID             string `json:"capa_id"`
	CreatedDate    string `json:"created_date"`
	IssueType      string `json:"issue_type"`
	Priority       string `json:"priority"`
	Subsidiary     string `json:"subsidiary"`
	Activity       string `json:"activity"`
	Contract       string `json:"contract"`
	EquipmentID    string `json:"equipment_id"`
	Owner          string `json:"owner"`
	DueDate        string `json:"due_date"`
	Status         string `json:"status"`
	RootCause      string `json:"root_cause"`
	ActionPlan     string `json:"action_plan"`
	ExpectedImpact string `json:"expected_impact"`
}

// Row renders the action in CAPAColumns order.
func (a CAPAAction) Row() []string {
	return []string{
		a.ID, a.CreatedDate, a.IssueType, a.Priority,
		a.Subsidiary, a.Activity, a.Contract, a.EquipmentID,
		a.Owner, a.DueDate, a.Status, a.RootCause, a.ActionPlan, a.ExpectedImpact,
	}
}

// MIREvent is a maintenance work-order event for one piece of equipment.
type MIREvent struct {
	EquipmentID   string `json:"equipment_id"`
	EventDate     Date   `json:"event_date"`
	EventType     string `json:"event_type"`
	WorkOrderID   string `json:"work_order_id"`
	LaborHours    Float  `json:"labor_hours"`
	PartsCost     Float  `json:"parts_cost"`
	DowntimeHours Float  `json:"downtime_hours"`
	FailureMode   string `json:"failure_mode"`
}

// MaintenanceKPI aggregates MIR events for one piece of equipment.
type MaintenanceKPI struct {
	EquipmentID   string  `json:"equipment_id"`
	EventCount    int     `json:"event_count"`
	LaborHours    float64 `json:"labor_hours"`
	PartsCost     float64 `json:"parts_cost"`
	DowntimeHours float64 `json:"downtime_hours"`
	MaintCost     float64 `json:"maint_cost"`
}
