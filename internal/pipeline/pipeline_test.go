package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/tabular"
	"github.com/sells-group/ops-cockpit/internal/variance"
)

func testRun(eq string, revenue, fuel, km float64) model.Run {
	return model.Run{
		Date:            model.ParseDate("2024-01-02"),
		Subsidiary:      "Bécar inc.",
		Activity:        "chargement",
		Contract:        "CTR-001",
		Team:            "Équipe A",
		EquipmentID:     eq,
		HoursOperated:   model.Some(8),
		KmDriven:        model.Some(km),
		M3Moved:         model.Some(100),
		Revenue:         model.Some(revenue),
		FuelCost:        model.Some(fuel),
		LaborCost:       model.Some(100),
		MaintenanceCost: model.Some(50),
		OverheadCost:    model.Some(50),
		DowntimeHours:   model.Some(0.5),
		IncidentCount:   model.Some(0),
		NearMissCount:   model.Some(0),
	}
}

func testTables() Tables {
	return Tables{Ops: kpi.RunsTable([]model.Run{
		testRun("EQ-001", 1000, 200, 100),
		testRun("EQ-002", 300, 400, 50),
		testRun("EQ-003", 900, 200, 100),
	})}
}

func TestRun_DerivesTargets(t *testing.T) {
	res, err := Run(testTables(), DefaultOptions())
	require.NoError(t, err)

	assert.True(t, res.TargetsDerived)
	require.Len(t, res.Targets, 1)
	require.Len(t, res.Scored, 3)
	assert.Len(t, res.Recommendations, 3)

	// Cost/km 4, 12, 4 -> median 4 -> target 3.8.
	assert.InDelta(t, 3.8, res.Targets[0].TargetCPKm.Value, 1e-9)

	worst := res.Scored[1]
	assert.True(t, worst.HasReason(model.ReasonNegativeProfit))
	assert.True(t, worst.HasReason(model.ReasonHighCostPerKmVar))
	assert.True(t, worst.HasReason(model.ReasonHighFuelShare))
	assert.Equal(t, "EQ-002", res.Recommendations[0].EquipmentID)
}

func TestRun_UsesTargetsTable(t *testing.T) {
	tables := testTables()
	tables.Targets = variance.TargetsTable([]model.Target{
		{Subsidiary: "Bécar inc.", Activity: "chargement", TargetCPH: model.Some(1000), TargetCPKm: model.Some(1000), TargetCPM3: model.Some(1000)},
	})
	opts := DefaultOptions()
	opts.TopN = 1
	opts.Phrases = recommend.English

	res, err := Run(tables, opts)
	require.NoError(t, err)
	assert.False(t, res.TargetsDerived)
	for _, s := range res.Scored {
		assert.False(t, s.HasReason(model.ReasonHighCostPerKmVar))
	}
	require.Len(t, res.Recommendations, 1)
	assert.Contains(t, res.Recommendations[0].RecommendedActions, "Contract profitability review")
}

func TestRun_MissingColumns(t *testing.T) {
	_, err := Run(Tables{Ops: tabular.New("date")}, DefaultOptions())
	var mce *kpi.MissingColumnsError
	require.True(t, errors.As(err, &mce))
}

func TestRun_BadTargetsTable(t *testing.T) {
	tables := testTables()
	tables.Targets = tabular.New("subsidiary")
	tables.Targets.Append([]string{"x"})
	_, err := Run(tables, DefaultOptions())
	require.Error(t, err)
}

func TestRun_DoesNotMutateTables(t *testing.T) {
	tables := testTables()
	before := tables.Clone()
	_, err := Run(tables, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, tables)
}

func TestResult_Tables(t *testing.T) {
	res, err := Run(testTables(), DefaultOptions())
	require.NoError(t, err)

	scored := res.ScoredTable()
	assert.Equal(t, model.ScoredColumns, scored.Columns)
	assert.Equal(t, 3, scored.Len())
	assert.Equal(t, model.RecommendationColumns, res.RecommendationTable().Columns)
	assert.Equal(t, model.TargetColumns, res.TargetsTable().Columns)
}

func TestTables_Normalize(t *testing.T) {
	tables := Tables{Ops: tabular.New("Equip", "KM"), MIR: tabular.New("downtime")}
	n := tables.Normalize()
	assert.Equal(t, []string{"equipment_id", "km_driven"}, n.Ops.Columns)
	assert.Equal(t, []string{"downtime_hours"}, n.MIR.Columns)
	assert.Nil(t, n.CAPA)
	assert.Equal(t, []string{"Equip", "KM"}, tables.Ops.Columns)
}

func TestQuality(t *testing.T) {
	tables := testTables()
	tables.CAPA = CAPATable(nil)
	tables.MIR = tabular.New(model.MIRColumns...)

	reps := Quality(tables)
	assert.True(t, reps.Ops.Summary.OK)
	assert.True(t, reps.CAPA.Summary.OK)
	assert.True(t, reps.MIR.Summary.OK)
	assert.True(t, reps.OK(tables))

	// Absent secondary tables are reported but not counted.
	tables.MIR = nil
	reps = Quality(tables)
	assert.True(t, reps.OK(tables))
	assert.Equal(t, "missing_columns", reps.MIR.Issues[0].IssueType)

	tables.MIR = tabular.New("equipment_id")
	reps = Quality(tables)
	assert.False(t, reps.OK(tables))
}

func TestTables_Slot(t *testing.T) {
	tables := testTables()
	for _, name := range []string{TableOps, TableTargets, TableCAPA, TableMIR} {
		slot, ok := tables.Slot(name)
		require.True(t, ok, name)
		*slot = tabular.New(name)
	}
	assert.Equal(t, []string{"ops"}, tables.Ops.Columns)
	assert.Equal(t, []string{"targets"}, tables.Targets.Columns)
	assert.Equal(t, []string{"capa"}, tables.CAPA.Columns)
	assert.Equal(t, []string{"mir"}, tables.MIR.Columns)

	_, ok := tables.Slot("runs")
	assert.False(t, ok)
}
