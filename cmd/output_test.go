package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/quality"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

func noColors(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sampleTable() *tabular.Table {
	t := tabular.New("equipment_id", "profit", "risk_level")
	t.Append([]string{"EQ-001", "-120", "High"})
	t.Append([]string{"EQ-002", "", "Low"})
	return t
}

func TestProject(t *testing.T) {
	p := project(sampleTable(), []string{"risk_level", "equipment_id", "absent"})
	assert.Equal(t, []string{"risk_level", "equipment_id", "absent"}, p.Columns)
	assert.Equal(t, []string{"High", "EQ-001", ""}, p.Rows[0])

	tbl := sampleTable()
	assert.Same(t, tbl, project(tbl, nil))
}

func TestPrintTable(t *testing.T) {
	noColors(t)
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, sampleTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"equipment_id", "profit", "risk_level"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"EQ-002", "-", "Low"}, strings.Fields(lines[2]))
}

func TestEmit(t *testing.T) {
	noColors(t)
	resetInputs(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outFormat = formatCSV
	require.NoError(t, emit(cmd, sampleTable(), []string{"profit"}))
	assert.Equal(t, "equipment_id,profit,risk_level\nEQ-001,-120,High\nEQ-002,,Low\n", buf.String())

	outFormat = "xml"
	assert.Error(t, emit(cmd, sampleTable(), nil))
}

func TestEmit_File(t *testing.T) {
	noColors(t)
	resetInputs(t)
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	outPath = t.TempDir() + "/out.csv"
	require.NoError(t, emit(cmd, sampleTable(), nil))
	assert.Contains(t, buf.String(), "(2 rows)")
	assert.FileExists(t, outPath)
}

func TestPrintReport(t *testing.T) {
	noColors(t)
	var buf bytes.Buffer
	printReport(&buf, "ops", quality.OpsReport(tabular.New("date")))
	out := buf.String()
	assert.Contains(t, out, "ops  0 rows, 1 issue(s)")
	assert.Contains(t, out, "missing_columns")
}
