// Package generate produces a deterministic synthetic dataset for demos and tests.
package generate

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/tabular"
	"github.com/sells-group/ops-cockpit/internal/variance"
)

// Activities and their daily mix weights.
var (
	Activities = []string{
		"transport_inter_usines",
		"transport_copeaux",
		"construction_chemins",
		"chargement",
	}
	activityWeights = []float64{0.42, 0.28, 0.18, 0.12}
)

var (
	teams          = []string{"Équipe A", "Équipe B", "Équipe C"}
	eventTypes     = []string{"preventive", "corrective"}
	eventWeights   = []float64{0.55, 0.45}
	failureModes   = []string{"hydraulique", "freins", "pneus", "moteur", "électrique", "structure"}
	owners         = []string{"Opérations", "Maintenance", "Approvisionnement", "Finances"}
	statuses       = []string{"Open", "In progress", "Done", "Verified"}
	statusWeights  = []float64{0.55, 0.25, 0.15, 0.05}
	priorities     = []string{"Low", "Medium", "High", "Critical"}
	priorityWeight = []float64{0.2, 0.45, 0.25, 0.1}
)

// Options controls the size and shape of the generated dataset.
type Options struct {
	Seed         uint64
	Days         int
	Equipment    int
	Contracts    int
	Subsidiaries []string

	// Today anchors the date window. Zero means time.Now().
	Today time.Time

	// MIREvents and CAPAActions size the secondary datasets.
	MIREvents   int
	CAPAActions int
}

// DefaultOptions mirrors the cockpit defaults.
func DefaultOptions() Options {
	return Options{
		Seed:         42,
		Days:         90,
		Equipment:    12,
		Contracts:    6,
		Subsidiaries: []string{"Bécar inc."},
		MIREvents:    220,
		CAPAActions:  12,
	}
}

// Validate checks the options are usable.
func (o Options) Validate() error {
	switch {
	case o.Days <= 0:
		return eris.Errorf("generate: days must be positive, got %d", o.Days)
	case o.Equipment <= 0:
		return eris.Errorf("generate: equipment must be positive, got %d", o.Equipment)
	case o.Contracts <= 0:
		return eris.Errorf("generate: contracts must be positive, got %d", o.Contracts)
	case len(o.Subsidiaries) == 0:
		return eris.New("generate: at least one subsidiary is required")
	case o.MIREvents < 0 || o.CAPAActions < 0:
		return eris.New("generate: event and action counts must not be negative")
	}
	return nil
}

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return model.DateOf(time.Now()).Time
	}
	return model.DateOf(o.Today).Time
}

// All generates runs, derived targets, CAPA actions and MIR events.
func All(o Options) (pipeline.Tables, error) {
	if err := o.Validate(); err != nil {
		return pipeline.Tables{}, err
	}
	runs := Runs(o)
	targets := variance.BuildTargets(kpi.Compute(runs), variance.DefaultFactor)

	return pipeline.Tables{
		Ops:     kpi.RunsTable(runs),
		Targets: variance.TargetsTable(targets),
		CAPA:    pipeline.CAPATable(CAPA(o, runs)),
		MIR:     MIRTable(MIR(o, equipmentIDs(runs))),
	}, nil
}

type rng struct{ *rand.Rand }

func newRNG(seed uint64) rng {
	return rng{rand.New(rand.NewPCG(seed, seed))}
}

func (r rng) normal(mean, sd float64) float64 { return mean + sd*r.NormFloat64() }

func (r rng) pick(xs []string) string { return xs[r.IntN(len(xs))] }

func (r rng) weighted(xs []string, w []float64) string {
	u := r.Float64()
	acc := 0.0
	for i, p := range w {
		acc += p
		if u < acc {
			return xs[i]
		}
	}
	return xs[len(xs)-1]
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%03d", prefix, i+1)
	}
	return out
}

// Runs generates o.Days days of runs ending the day before o.Today.
func Runs(o Options) []model.Run {
	r := newRNG(o.Seed)
	start := o.today().AddDate(0, 0, -o.Days)
	equipment := ids("EQ", o.Equipment)
	contracts := ids("CTR", o.Contracts)

	var runs []model.Run
	for d := 0; d < o.Days; d++ {
		date := model.DateOf(start.AddDate(0, 0, d))
		n := 6 + r.IntN(10)
		for range n {
			runs = append(runs, r.run(date, o.Subsidiaries, contracts, equipment))
		}
	}
	return runs
}

func (r rng) run(date model.Date, subs, contracts, equipment []string) model.Run {
	sub := r.pick(subs)
	act := r.weighted(Activities, activityWeights)
	ctr := r.pick(contracts)
	eq := r.pick(equipment)
	team := r.pick(teams)

	hours := max(0.5, round(r.normal(8.0, 1.8), 2))

	var km, m3 float64
	switch act {
	case "transport_inter_usines", "transport_copeaux":
		km = round(max(5.0, r.normal(180, 60)), 1)
		m3 = round(max(2.0, r.normal(85, 25)), 1)
	case "construction_chemins":
		km = round(max(0.0, r.normal(12, 6)), 1)
		m3 = round(max(0.0, r.normal(25, 10)), 1)
	default:
		km = round(max(0.0, r.normal(6, 4)), 1)
		m3 = round(max(5.0, r.normal(120, 35)), 1)
	}

	fuelFactor := 0.6
	if km != 0 {
		fuelFactor = km / 180
	}
	fuel := round(max(0.0, r.normal(210, 70))*fuelFactor, 2)
	labor := round(max(0.0, r.normal(52, 8))*hours, 2)
	maint := round(max(0.0, r.normal(65, 25))*(hours/8), 2)
	overhead := round(max(0.0, r.normal(45, 12))*(hours/8), 2)

	downtime := round(max(0.0, r.normal(0.6, 0.8)), 2)
	downtime = min(downtime, hours*0.6)

	var revenue float64
	switch act {
	case "transport_inter_usines", "transport_copeaux":
		revenue = round(2.2*km+4.0*m3+18*hours, 2)
	case "construction_chemins":
		revenue = round(55*hours+1.2*m3, 2)
	default:
		revenue = round(28*hours+2.8*m3, 2)
	}

	var incident, nearMiss float64
	if r.Float64() < 0.015 {
		incident = 1
	}
	if r.Float64() < 0.045 {
		nearMiss = 1
	}

	return model.Run{
		Date:            date,
		Subsidiary:      sub,
		Activity:        act,
		Contract:        ctr,
		Team:            team,
		EquipmentID:     eq,
		HoursOperated:   model.Some(hours),
		KmDriven:        model.Some(km),
		M3Moved:         model.Some(m3),
		Revenue:         model.Some(revenue),
		FuelCost:        model.Some(fuel),
		LaborCost:       model.Some(labor),
		MaintenanceCost: model.Some(maint),
		OverheadCost:    model.Some(overhead),
		DowntimeHours:   model.Some(downtime),
		IncidentCount:   model.Some(incident),
		NearMissCount:   model.Some(nearMiss),
	}
}

func equipmentIDs(runs []model.Run) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range runs {
		if !seen[r.EquipmentID] {
			seen[r.EquipmentID] = true
			out = append(out, r.EquipmentID)
		}
	}
	sort.Strings(out)
	return out
}

// MIR generates maintenance events over the 180 days before o.Today.
func MIR(o Options, equipment []string) []model.MIREvent {
	if len(equipment) == 0 {
		return nil
	}
	r := newRNG(o.Seed + 7)
	start := o.today().AddDate(0, 0, -180)

	events := make([]model.MIREvent, o.MIREvents)
	for i := range events {
		eq := r.pick(equipment)
		day := start.AddDate(0, 0, r.IntN(180))
		et := r.weighted(eventTypes, eventWeights)
		labor := round(max(0.5, r.normal(3.2, 1.6)), 2)
		parts := round(max(0.0, r.normal(220, 160)), 2)
		downMean := 0.8
		if et == "corrective" {
			downMean = 1.4
		}
		down := round(max(0.0, r.normal(downMean, 0.9)), 2)
		fm := "inspection"
		if et == "corrective" {
			fm = r.pick(failureModes)
		}
		events[i] = model.MIREvent{
			EquipmentID:   eq,
			EventDate:     model.DateOf(day),
			EventType:     et,
			WorkOrderID:   fmt.Sprintf("WO-%05d", i),
			LaborHours:    model.Some(labor),
			PartsCost:     model.Some(parts),
			DowntimeHours: model.Some(down),
			FailureMode:   fm,
		}
	}
	return events
}

// MIRTable encodes events in model.MIRColumns order.
func MIRTable(events []model.MIREvent) *tabular.Table {
	t := tabular.New(model.MIRColumns...)
	for _, e := range events {
		t.Append([]string{
			e.EquipmentID, e.EventDate.String(), e.EventType, e.WorkOrderID,
			e.LaborHours.String(), e.PartsCost.String(), e.DowntimeHours.String(), e.FailureMode,
		})
	}
	return t
}

// CAPA samples runs without replacement and drafts one action for each.
func CAPA(o Options, runs []model.Run) []model.CAPAAction {
	r := newRNG(o.Seed + 11)
	n := min(o.CAPAActions, len(runs))
	picks := r.Perm(len(runs))[:n]

	out := make([]model.CAPAAction, n)
	for i, p := range picks {
		run := runs[p]
		due := run.Date.Time.AddDate(0, 0, 7+r.IntN(23))
		out[i] = model.CAPAAction{
			ID:          fmt.Sprintf("CAPA-%04d", i+1),
			CreatedDate: run.Date.String(),
			IssueType:   pipeline.ProposalIssue,
			Priority:    r.weighted(priorities, priorityWeight),
			Subsidiary:  run.Subsidiary,
			Activity:    run.Activity,
			Contract:    run.Contract,
			EquipmentID: run.EquipmentID,
			Owner:       r.pick(owners),
			DueDate:     due.Format(model.DateLayout),
			Status:      r.weighted(statuses, statusWeights),
		}
	}
	return out
}
