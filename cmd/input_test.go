package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/export"
	"github.com/sells-group/ops-cockpit/internal/generate"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/recommend"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

func TestLoadTables_Synthetic(t *testing.T) {
	testConfig(t)
	resetInputs(t)
	inToday = "2025-03-31"

	a, source, err := loadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sourceSynthetic, source)
	assert.NotZero(t, a.Ops.Len())
	assert.NotZero(t, a.Targets.Len())
	assert.NotZero(t, a.MIR.Len())

	b, _, err := loadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Ops, b.Ops, "same seed and date give the same runs")
}

func TestLoadTables_InvalidToday(t *testing.T) {
	testConfig(t)
	resetInputs(t)
	inToday = "not a date"

	_, _, err := loadTables(context.Background())
	assert.Error(t, err)
}

func writeDataset(t *testing.T, dir string) pipeline.Tables {
	t.Helper()
	o := generate.DefaultOptions()
	o.Days = 5
	o.Today = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	tables, err := generate.All(o)
	require.NoError(t, err)
	require.NoError(t, tabular.WriteCSVFile(filepath.Join(dir, "ops.csv"), tables.Ops))
	require.NoError(t, tabular.WriteCSVFile(filepath.Join(dir, "mir.csv"), tables.MIR))
	return tables
}

func TestLoadTables_Files(t *testing.T) {
	testConfig(t)
	resetInputs(t)
	dir := t.TempDir()
	want := writeDataset(t, dir)

	inOps = filepath.Join(dir, "ops.csv")
	inMIR = filepath.Join(dir, "mir.csv")

	got, source, err := loadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops.csv", source)
	assert.Equal(t, want.Ops.Columns, got.Ops.Columns)
	assert.Equal(t, want.Ops.Len(), got.Ops.Len())
	assert.Equal(t, want.MIR.Len(), got.MIR.Len())
	assert.Nil(t, got.Targets)
	assert.Nil(t, got.CAPA)

	res, err := pipeline.Run(got, pipelineOptions())
	require.NoError(t, err)
	assert.True(t, res.TargetsDerived)
}

func TestLoadTables_MissingFile(t *testing.T) {
	testConfig(t)
	resetInputs(t)
	inOps = filepath.Join(t.TempDir(), "nope.csv")

	_, _, err := loadTables(context.Background())
	assert.Error(t, err)
}

func TestLoadTables_Pack(t *testing.T) {
	testConfig(t)
	resetInputs(t)
	inToday = "2025-03-31"

	tables, _, err := loadTables(context.Background())
	require.NoError(t, err)
	res, err := pipeline.Run(tables, pipelineOptions())
	require.NoError(t, err)

	now := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), packFileName(now))
	require.NoError(t, export.WritePackFile(path, packInput(tables, res, "synthetic", "fr-CA", now)))

	inPack = path
	got, source, err := loadTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ops_cockpit_pack_20250331_0900.zip", source)
	assert.Equal(t, tables.Ops.Len(), got.Ops.Len())
}

func TestCSVOptions_FlagOverridesConfig(t *testing.T) {
	testConfig(t)
	resetInputs(t)

	assert.Equal(t, ',', csvOptions().Delimiter)
	inDelimiter = ";"
	inCharset = "windows-1252"
	opts := csvOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "windows-1252", opts.Charset)
}

func TestPipelineOptions_Locale(t *testing.T) {
	testConfig(t)
	assert.Equal(t, recommend.French, pipelineOptions().Phrases)
	cfg.Export.Locale = "en-CA"
	assert.Equal(t, recommend.English, pipelineOptions().Phrases)
	assert.Equal(t, 8, pipelineOptions().TopN)
}

func TestParseFilter(t *testing.T) {
	f, err := parseFilter("2025-01-01", "2025-01-31", "S", "", "C1", "")
	require.NoError(t, err)
	assert.True(t, f.From.Valid)
	assert.True(t, f.To.Valid)
	assert.Equal(t, "S", f.Subsidiary)
	assert.Equal(t, "C1", f.Contract)

	_, err = parseFilter("yesterday", "", "", "", "", "")
	assert.Error(t, err)
}
