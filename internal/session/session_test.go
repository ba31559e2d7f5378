package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/generate"
	"github.com/sells-group/ops-cockpit/internal/kpi"
	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

var today = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

func testTables(t *testing.T) pipeline.Tables {
	t.Helper()
	o := generate.DefaultOptions()
	o.Days = 14
	o.Equipment = 4
	o.Contracts = 2
	o.MIREvents = 30
	o.CAPAActions = 3
	o.Today = today
	tables, err := generate.All(o)
	require.NoError(t, err)
	return tables
}

func newTestManager(t *testing.T, max int) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{MaxSessions: max, Options: pipeline.DefaultOptions()})
	t.Cleanup(func() { m.Close() }) //nolint:errcheck
	return m
}

func TestSession_Run(t *testing.T) {
	tables := testTables(t)
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), tables, "synthetic")
	require.NoError(t, err)

	res, err := s.Run()
	require.NoError(t, err)
	assert.Len(t, res.Scored, tables.Ops.Len())
	assert.LessOrEqual(t, len(res.Recommendations), 8)
	assert.False(t, res.TargetsDerived)
	assert.Equal(t, "synthetic", s.Source())
}

func TestSession_MissingColumns(t *testing.T) {
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), pipeline.Tables{Ops: tabular.New("date", "revenue")}, "broken")
	require.NoError(t, err)

	_, err = s.Run()
	var mce *kpi.MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Contains(t, mce.Columns, "fuel_cost")

	reports := s.Quality()
	assert.False(t, reports.Ops.Summary.OK)
}

func TestSession_IsolatedFromCallerAndOtherSessions(t *testing.T) {
	tables := testTables(t)
	capaBefore := tables.CAPA.Len()
	m := newTestManager(t, 0)

	a, err := m.Create(context.Background(), tables, "a")
	require.NoError(t, err)
	b, err := m.Create(context.Background(), tables, "b")
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	actions, err := a.GenerateCAPA(today)
	require.NoError(t, err)
	require.NotEmpty(t, actions)
	assert.LessOrEqual(t, len(actions), pipeline.ProposalCount)
	assert.Equal(t, "AUTO-20250331-01", actions[0].ID)

	assert.Equal(t, capaBefore+len(actions), a.Tables().CAPA.Len())
	assert.Equal(t, capaBefore, b.Tables().CAPA.Len())
	assert.Equal(t, capaBefore, tables.CAPA.Len())

	// Mutating a returned copy does not reach the session.
	cp := a.Tables()
	cp.Ops.Rows = nil
	assert.NotZero(t, a.Tables().Ops.Len())
}

func TestSession_SetTable(t *testing.T) {
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), testTables(t), "synthetic")
	require.NoError(t, err)

	ops := tabular.New("Equip", "Heures", "team")
	require.NoError(t, s.SetTable(pipeline.TableOps, ops))
	assert.Equal(t, []string{"equipment_id", "hours_operated", "team"}, s.Tables().Ops.Columns)
	assert.Equal(t, []string{"Equip", "Heures", "team"}, ops.Columns)

	got, err := s.Table(pipeline.TableOps)
	require.NoError(t, err)
	assert.Equal(t, []string{"equipment_id", "hours_operated", "team"}, got.Columns)

	assert.Error(t, s.SetTable("runs", ops))
	_, err = s.Table("runs")
	assert.Error(t, err)
}

func TestSession_SetTableKeepsCAPAProposals(t *testing.T) {
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), testTables(t), "synthetic")
	require.NoError(t, err)
	before := s.Tables().CAPA.Len()

	actions, err := s.GenerateCAPA(today)
	require.NoError(t, err)
	require.NotEmpty(t, actions)

	mir := tabular.New("equipment_id", "event_date", "downtime_hours")
	mir.Append([]string{"EQ-001", "2025-03-01", "2"})
	require.NoError(t, s.SetTable(pipeline.TableMIR, mir))

	tables := s.Tables()
	assert.Equal(t, before+len(actions), tables.CAPA.Len())
	assert.Equal(t, 1, tables.MIR.Len())
}

func TestSession_ConcurrentWrites(t *testing.T) {
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), testTables(t), "synthetic")
	require.NoError(t, err)
	before := s.Tables().CAPA.Len()

	const rounds = 5
	var wg sync.WaitGroup
	proposed := make([]int, rounds)
	for i := range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			actions, err := s.GenerateCAPA(today)
			assert.NoError(t, err)
			proposed[i] = len(actions)
		}()
		go func() {
			defer wg.Done()
			targets := tabular.New(model.TargetColumns...)
			assert.NoError(t, s.SetTable(pipeline.TableTargets, targets))
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range proposed {
		total += n
	}
	assert.Equal(t, before+total, s.Tables().CAPA.Len())
	assert.Equal(t, model.TargetColumns, s.Tables().Targets.Columns)
}

func TestSession_Maintenance(t *testing.T) {
	m := newTestManager(t, 0)
	s, err := m.Create(context.Background(), testTables(t), "synthetic")
	require.NoError(t, err)

	kpis, err := s.Maintenance()
	require.NoError(t, err)
	require.NotEmpty(t, kpis)
	for i := 1; i < len(kpis); i++ {
		assert.GreaterOrEqual(t, kpis[i-1].DowntimeHours, kpis[i].DowntimeHours)
	}
}

func TestSession_Scenarios(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 0)
	s, err := m.Create(ctx, testTables(t), "synthetic")
	require.NoError(t, err)

	neutral, err := s.RunScenario(ctx, pipeline.NeutralScenario("Base"), kpi.Filter{}, false)
	require.NoError(t, err)
	assert.Empty(t, neutral.ID)
	assert.Equal(t, neutral.Result.Base, neutral.Result.Summary)

	shock := pipeline.NeutralScenario("Fuel shock")
	shock.Fuel = 1.5
	saved, err := s.RunScenario(ctx, shock, kpi.Filter{}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Less(t, saved.Result.Delta.Profit, 0.0)

	_, err = s.RunScenario(ctx, pipeline.NeutralScenario("Second"), kpi.Filter{Contract: "none"}, true)
	require.NoError(t, err)

	lib, err := s.Library(ctx)
	require.NoError(t, err)
	require.Len(t, lib, 2)
	assert.Equal(t, "Fuel shock", lib[0].Result.Scenario.Name)
	assert.Equal(t, 0, lib[1].Result.Summary.Rows)

	require.NoError(t, s.DeleteScenario(ctx, saved.ID))
	lib, err = s.Library(ctx)
	require.NoError(t, err)
	assert.Len(t, lib, 1)

	bad := pipeline.NeutralScenario("Bad")
	bad.Revenue = -1
	_, err = s.RunScenario(ctx, bad, kpi.Filter{}, true)
	assert.Error(t, err)
}

func TestSession_LibrariesAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 0)
	a, err := m.Create(ctx, testTables(t), "a")
	require.NoError(t, err)
	b, err := m.Create(ctx, testTables(t), "b")
	require.NoError(t, err)

	_, err = a.RunScenario(ctx, pipeline.NeutralScenario("A"), kpi.Filter{}, true)
	require.NoError(t, err)

	lib, err := b.Library(ctx)
	require.NoError(t, err)
	assert.Empty(t, lib)
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 2)

	a, err := m.Create(ctx, testTables(t), "a")
	require.NoError(t, err)
	_, err = m.Create(ctx, testTables(t), "b")
	require.NoError(t, err)

	_, err = m.Create(ctx, testTables(t), "c")
	assert.Error(t, err)
	assert.Len(t, m.IDs(), 2)

	got, ok := m.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	require.NoError(t, m.Delete(a.ID))
	_, ok = m.Get(a.ID)
	assert.False(t, ok)
	assert.Error(t, m.Delete(a.ID))

	_, err = m.Create(ctx, testTables(t), "c")
	assert.NoError(t, err)
}

func TestManager_FileStores(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(ManagerConfig{DSN: dir, Options: pipeline.DefaultOptions()})
	t.Cleanup(func() { m.Close() }) //nolint:errcheck

	s, err := m.Create(context.Background(), testTables(t), "file")
	require.NoError(t, err)
	assert.Equal(t, dir+"/"+s.ID+".db", m.dsnFor(s.ID))

	_, err = s.RunScenario(context.Background(), pipeline.NeutralScenario("A"), kpi.Filter{}, true)
	require.NoError(t, err)

	path := filepath.Join(dir, s.ID+".db")
	assert.FileExists(t, path)
	require.NoError(t, m.Delete(s.ID))
	assert.NoFileExists(t, path)

	other, err := m.Create(context.Background(), testTables(t), "file")
	require.NoError(t, err)
	otherPath := filepath.Join(dir, other.ID+".db")
	assert.FileExists(t, otherPath)
	require.NoError(t, m.Close())
	assert.NoFileExists(t, otherPath)
}
