// Package pipeline composes the KPI, variance, risk and recommendation steps
// over an explicit table set.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/quality"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/risk"
	"github.com/sells-group/ops-cockpit/internal/tabular"
	"github.com/sells-group/ops-cockpit/internal/variance"
)

// Tables is the canonical table set a caller owns. Pipeline functions never
// mutate it.
type Tables struct {
	Ops     *tabular.Table
	Targets *tabular.Table
	CAPA    *tabular.Table
	MIR     *tabular.Table
}

// Table names accepted by Slot.
const (
	TableOps     = "ops"
	TableTargets = "targets"
	TableCAPA    = "capa"
	TableMIR     = "mir"
)

// Slot returns a pointer to the named table of t.
func (t *Tables) Slot(name string) (**tabular.Table, bool) {
	switch name {
	case TableOps:
		return &t.Ops, true
	case TableTargets:
		return &t.Targets, true
	case TableCAPA:
		return &t.CAPA, true
	case TableMIR:
		return &t.MIR, true
	}
	return nil, false
}

// Clone returns a deep copy of the table set.
func (t Tables) Clone() Tables {
	return Tables{
		Ops:     t.Ops.Clone(),
		Targets: t.Targets.Clone(),
		CAPA:    t.CAPA.Clone(),
		MIR:     t.MIR.Clone(),
	}
}

// Normalize returns the table set with header synonyms renamed.
func (t Tables) Normalize() Tables {
	return Tables{
		Ops:     quality.Normalize(t.Ops),
		Targets: quality.Normalize(t.Targets),
		CAPA:    quality.Normalize(t.CAPA),
		MIR:     quality.Normalize(t.MIR),
	}
}

// Options tunes a pipeline run.
type Options struct {
	// TargetFactor scales group medians when targets are derived from runs.
	TargetFactor float64
	// TopN caps the recommendation list. Negative means no cap.
	TopN    int
	Phrases recommend.Phrases
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{TargetFactor: variance.DefaultFactor, TopN: 8, Phrases: recommend.French}
}

// Result holds every derived view of one run of the pipeline.
type Result struct {
	Runs            []model.Run
	Targets         []model.Target
	Scored          []model.ScoredRun
	Recommendations []model.Recommendation
	// TargetsDerived is true when targets were built from the runs rather
	// than read from the Targets table.
	TargetsDerived bool
}

// Run executes KPI, variance, risk and recommendation over t. Targets come
// from t.Targets when it has rows and are otherwise built from the runs.
// The only error is a missing required column.
func Run(t Tables, opts Options) (*Result, error) {
	runs, err := kpi.ParseRuns(t.Ops)
	if err != nil {
		return nil, err
	}
	computed := kpi.Compute(runs)

	res := &Result{Runs: runs}
	if t.Targets.Len() > 0 {
		res.Targets, err = variance.ParseTargets(t.Targets)
		if err != nil {
			return nil, err
		}
	} else {
		res.Targets = variance.BuildTargets(computed, opts.TargetFactor)
		res.TargetsDerived = true
	}

	res.Scored = risk.Apply(variance.Join(computed, res.Targets))
	res.Recommendations = recommend.Build(res.Scored, opts.TopN, opts.Phrases)

	zap.L().Debug("pipeline: scored runs",
		zap.Int("rows", len(res.Scored)),
		zap.Int("targets", len(res.Targets)),
		zap.Bool("targets_derived", res.TargetsDerived),
		zap.Int("recommendations", len(res.Recommendations)),
	)
	return res, nil
}

// ScoredTable encodes the scored runs.
func (r *Result) ScoredTable() *tabular.Table { return kpi.ScoredTable(r.Scored) }

// RecommendationTable encodes the recommendations.
func (r *Result) RecommendationTable() *tabular.Table { return recommend.Table(r.Recommendations) }

// TargetsTable encodes the targets used for the join.
func (r *Result) TargetsTable() *tabular.Table { return variance.TargetsTable(r.Targets) }

// Reports bundles the quality reports of a table set.
type Reports struct {
	Ops  quality.Report `json:"ops"`
	CAPA quality.Report `json:"capa"`
	MIR  quality.Report `json:"mir"`
}

// OK reports whether every dataset present in t passed. Absent CAPA and MIR
// tables are not counted.
func (r Reports) OK(t Tables) bool {
	return r.Ops.Summary.OK &&
		(t.CAPA == nil || r.CAPA.Summary.OK) &&
		(t.MIR == nil || r.MIR.Summary.OK)
}

// Quality checks every dataset of t. Findings are advisory.
func Quality(t Tables) Reports {
	return Reports{
		Ops:  quality.OpsReport(t.Ops),
		CAPA: quality.CAPAReport(t.CAPA),
		MIR:  quality.MIRReport(t.MIR),
	}
}
