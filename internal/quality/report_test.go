package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

func opsRow(date, equip, hours, down string) []string {
	return []string{
		date, "Transport", "Hauling", "C-01", "T1", equip,
		hours, "100", "20", "1000", "200", "300", "100", "100", down, "0", "0",
	}
}

func cleanOps() *tabular.Table {
	t := tabular.New(model.OpsColumns...)
	t.Append(opsRow("2024-01-01", "EQ-1", "10", "2"))
	t.Append(opsRow("2024-01-01", "EQ-2", "10", "2"))
	t.Append(opsRow("2024-01-02", "EQ-1", "10", "2"))
	return t
}

func TestOpsReport_Clean(t *testing.T) {
	rep := OpsReport(cleanOps())
	assert.True(t, rep.Summary.OK)
	assert.Equal(t, 3, rep.Summary.RowCount)
	assert.Empty(t, rep.Issues)
}

func TestOpsReport_MissingRevenueShortCircuits(t *testing.T) {
	var cols []string
	for _, c := range model.OpsColumns {
		if c != model.ColRevenue {
			cols = append(cols, c)
		}
	}
	tbl := tabular.New(cols...)
	// Garbage that would otherwise trigger every rule.
	tbl.Append([]string{"nope", "S", "A", "C", "T", "E", "x", "-1", "y", "-5", "1", "1", "1", "99", "0", "0"})
	tbl.Append([]string{"nope", "S", "A", "C", "T", "E", "x", "-1", "y", "-5", "1", "1", "1", "99", "0", "0"})

	rep := OpsReport(tbl)
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, Issue{
		IssueType: IssueMissingColumns,
		Column:    "*",
		Message:   "Missing required columns: revenue",
		Count:     1,
	}, rep.Issues[0])
	assert.False(t, rep.Summary.OK)
	assert.Equal(t, 2, rep.Summary.RowCount)
}

func TestOpsReport_MissingCountsColumns(t *testing.T) {
	rep := OpsReport(tabular.New("date", "subsidiary"))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, 13, rep.Issues[0].Count)
}

func TestOpsReport_SafetyCountersOptional(t *testing.T) {
	tbl := tabular.New(model.OpsRequired...)
	tbl.Append(opsRow("2024-01-01", "EQ-1", "10", "2")[:15])
	assert.True(t, OpsReport(tbl).Summary.OK)
}

func TestOpsReport_DuplicatesKeepAll(t *testing.T) {
	tbl := tabular.New(model.OpsColumns...)
	tbl.Append(opsRow("2024-01-01", "EQ-1", "10", "2"))
	tbl.Append(opsRow("2024-01-01", "EQ-1", "12", "1"))
	tbl.Append(opsRow("2024-01-01", "EQ-2", "10", "2"))

	rep := OpsReport(tbl)
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, IssueDuplicates, rep.Issues[0].IssueType)
	assert.Equal(t, "*", rep.Issues[0].Column)
	assert.Equal(t, 2, rep.Issues[0].Count)
	assert.False(t, rep.Summary.OK)
}

func TestOpsReport_ValueIssuesInOrder(t *testing.T) {
	tbl := tabular.New(model.OpsColumns...)
	tbl.Append(opsRow("not-a-date", "EQ-1", "abc", "2"))
	tbl.Append(opsRow("2024-01-02", "EQ-2", "-4", "2"))
	tbl.Append(opsRow("", "EQ-3", "5", "9"))
	tbl.Append(opsRow("2024-01-04", "EQ-4", "10", ""))

	rep := OpsReport(tbl)
	got := make([][2]string, 0, len(rep.Issues))
	counts := make([]int, 0, len(rep.Issues))
	for _, is := range rep.Issues {
		got = append(got, [2]string{is.IssueType, is.Column})
		counts = append(counts, is.Count)
	}
	assert.Equal(t, [][2]string{
		{IssueInvalidDate, "date"},
		{IssueNonNumeric, "hours_operated"},
		{IssueNegative, "hours_operated"},
		{IssueNonNumeric, "downtime_hours"},
		{IssueInconsistent, "downtime_hours"},
	}, got)
	assert.Equal(t, []int{2, 1, 1, 1, 2}, counts)
}

func TestOpsReport_UndefinedNeverInconsistent(t *testing.T) {
	tbl := tabular.New(model.OpsColumns...)
	tbl.Append(opsRow("2024-01-01", "EQ-1", "", "5"))
	rep := OpsReport(tbl)
	for _, is := range rep.Issues {
		assert.NotEqual(t, IssueInconsistent, is.IssueType)
	}
}

func TestCAPAReport(t *testing.T) {
	tbl := tabular.New(model.CAPAColumns...)
	row := func(id, created, due string) []string {
		return []string{id, created, "Coût", "High", "S", "A", "C", "E", "Ops", due, "Open", "", "", ""}
	}
	tbl.Append(row("CAPA-1", "2024-01-01", "2024-01-15"))
	tbl.Append(row("CAPA-1", "2024-01-02", "later"))
	tbl.Append(row("CAPA-2", "bad", "2024-02-01"))

	rep := CAPAReport(tbl)
	assert.Equal(t, []Issue{
		{IssueInvalidDate, "created_date", "Unparseable dates", 1},
		{IssueInvalidDate, "due_date", "Unparseable dates", 1},
		{IssueDuplicates, "capa_id", "Duplicate CAPA IDs", 2},
	}, rep.Issues)
	assert.False(t, rep.Summary.OK)
}

func TestCAPAReport_MissingColumns(t *testing.T) {
	rep := CAPAReport(tabular.New(model.CAPAColumns[:10]...))
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, "Missing required columns: status", rep.Issues[0].Message)
}

func TestMIRReport(t *testing.T) {
	tbl := tabular.New(model.MIRColumns...)
	tbl.Append([]string{"EQ-1", "2024-01-01", "Preventive", "WO-1", "2", "100", "1", "Hydraulique"})
	tbl.Append([]string{"EQ-1", "2024-13-45", "Corrective", "WO-2", "x", "-3", "1", ""})

	rep := MIRReport(tbl)
	assert.Equal(t, []Issue{
		{IssueInvalidDate, "event_date", "Unparseable dates", 1},
		{IssueNonNumeric, "labor_hours", "Non numeric values", 1},
		{IssueNegative, "parts_cost", "Negative values", 1},
	}, rep.Issues)
}

func TestMIRReport_NoDuplicateRule(t *testing.T) {
	tbl := tabular.New(model.MIRColumns...)
	row := []string{"EQ-1", "2024-01-01", "Preventive", "WO-1", "2", "100", "1", ""}
	tbl.Append(row)
	tbl.Append(row)
	assert.True(t, MIRReport(tbl).Summary.OK)
}

func TestReport_Table(t *testing.T) {
	rep := Report{Issues: []Issue{{IssueNegative, "km_driven", "Negative values", 3}}}
	tbl := rep.Table()
	assert.Equal(t, IssueColumns, tbl.Columns)
	assert.Equal(t, [][]string{{"negative", "km_driven", "Negative values", "3"}}, tbl.Rows)
}

func TestCountDuplicates(t *testing.T) {
	tbl := tabular.New("k", "v")
	for _, r := range [][]string{{"a", "1"}, {"b", "2"}, {"a", "3"}, {"a", "4"}, {"c", "5"}} {
		tbl.Append(r)
	}
	assert.Equal(t, 3, CountDuplicates(tbl, []string{"k"}))
	assert.Equal(t, 0, CountDuplicates(tbl, []string{"k", "v"}))
}
