package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/model"
)

func TestRunScenario_NeutralMatchesBase(t *testing.T) {
	runs := []model.Run{testRun("EQ-1", 1000, 200, 100), testRun("EQ-2", 500, 300, 0)}
	res := RunScenario(runs, NeutralScenario("base"))

	assert.Equal(t, res.Base, res.Summary)
	assert.Zero(t, res.Delta.Profit)
	assert.Zero(t, res.Delta.TotalCost)
	assert.Equal(t, model.Some(0), res.Delta.CostPerKm)
}

func TestRunScenario_Multipliers(t *testing.T) {
	runs := []model.Run{testRun("EQ-1", 1000, 200, 100)}
	s := NeutralScenario("fuel up")
	s.Fuel = 1.5
	s.Revenue = 1.1

	res := RunScenario(runs, s)
	// Costs 400 -> 500, revenue 1000 -> 1100.
	assert.InDelta(t, 100, res.Delta.TotalCost, 1e-9)
	assert.InDelta(t, 0, res.Delta.Profit, 1e-9)
	assert.InDelta(t, 1.0, res.Delta.CostPerKm.Value, 1e-9)

	assert.Equal(t, model.Some(200), runs[0].FuelCost, "input untouched")
}

func TestScenario_ApplyVolume(t *testing.T) {
	s := NeutralScenario("vol")
	s.Volume = 2
	out := s.Apply([]model.Run{testRun("EQ-1", 1, 1, 10)})
	assert.Equal(t, model.Some(20), out[0].KmDriven)
	assert.Equal(t, model.Some(200), out[0].M3Moved)
}

func TestParseScenarios(t *testing.T) {
	data := []byte(`
scenarios:
  - name: Fuel shock
    mult_fuel: 1.3
  - name: Rate increase
    mult_rev: 1.05
    mult_vol: 0.9
`)
	got, err := ParseScenarios(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	want := NeutralScenario("Fuel shock")
	want.Fuel = 1.3
	assert.Equal(t, want, got[0])
	assert.Equal(t, 1.05, got[1].Revenue)
	assert.Equal(t, 0.9, got[1].Volume)
	assert.Equal(t, 1.0, got[1].Labor)
}

func TestParseScenarios_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "scenarios: [\n"},
		{"missing name", "scenarios:\n  - mult_fuel: 1.2\n"},
		{"negative multiplier", "scenarios:\n  - name: x\n    mult_labor: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenarios([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  - name: A\n"), 0o644))

	got, err := LoadScenarios(path)
	require.NoError(t, err)
	assert.Equal(t, []Scenario{NeutralScenario("A")}, got)

	_, err = LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLibraryTable(t *testing.T) {
	res := RunScenario([]model.Run{testRun("EQ-1", 1000, 200, 100)}, NeutralScenario("A"))
	tbl := LibraryTable([]ScenarioResult{res})
	assert.Equal(t, LibraryColumns, tbl.Columns)
	assert.Equal(t, []string{"A", "600", "400", "0.6", "1", "1", "1", "1", "1", "1"}, tbl.Rows[0])
}
