package quality

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Issue types.
const (
	IssueMissingColumns = "missing_columns"
	IssueInvalidDate    = "invalid_date"
	IssueNonNumeric     = "non_numeric"
	IssueNegative       = "negative"
	IssueInconsistent   = "inconsistent"
	IssueDuplicates     = "duplicates"
)

// Issue is one finding of a quality report.
type Issue struct {
	IssueType string `json:"issue_type"`
	Column    string `json:"column"`
	Message   string `json:"message"`
	Count     int    `json:"count"`
}

// Summary is the headline of a quality report.
type Summary struct {
	RowCount int  `json:"row_count"`
	OK       bool `json:"ok"`
}

// Report lists quality issues for one dataset. Reports are advisory: they never
// filter or correct data and never block the pipeline.
type Report struct {
	Summary Summary `json:"summary"`
	Issues  []Issue `json:"issues"`
}

// IssueColumns is the column order of an issues table.
var IssueColumns = []string{"issue_type", "column", "message", "count"}

// Table renders the issues as a table.
func (r Report) Table() *tabular.Table {
	t := tabular.New(IssueColumns...)
	for _, is := range r.Issues {
		t.Append([]string{is.IssueType, is.Column, is.Message, strconv.Itoa(is.Count)})
	}
	return t
}

// ruleSet describes the checks for one dataset kind.
type ruleSet struct {
	required     []string
	dates        []string
	numeric      []string
	inconsistent bool
	key          []string
	keyColumn    string
	keyMessage   string
}

var (
	opsRules = ruleSet{
		required:     model.OpsRequired,
		dates:        []string{model.ColDate},
		numeric:      model.OpsNumeric,
		inconsistent: true,
		key:          model.OpsKey,
		keyColumn:    "*",
		keyMessage:   "Potential duplicate run rows (date/sub/activity/contract/equipment)",
	}
	capaRules = ruleSet{
		required:   model.CAPARequired,
		dates:      []string{"created_date", "due_date"},
		key:        []string{"capa_id"},
		keyColumn:  "capa_id",
		keyMessage: "Duplicate CAPA IDs",
	}
	mirRules = ruleSet{
		required: model.MIRRequired,
		dates:    []string{"event_date"},
		numeric:  []string{"labor_hours", "parts_cost", model.ColDowntimeHours},
	}
)

// OpsReport checks an operational runs table.
func OpsReport(t *tabular.Table) Report { return check(t, opsRules) }

// CAPAReport checks a CAPA action table.
func CAPAReport(t *tabular.Table) Report { return check(t, capaRules) }

// MIRReport checks a maintenance event table.
func MIRReport(t *tabular.Table) Report { return check(t, mirRules) }

func check(t *tabular.Table, rs ruleSet) Report {
	if t == nil {
		t = &tabular.Table{}
	}
	rep := Report{Summary: Summary{RowCount: t.Len()}, Issues: []Issue{}}

	if missing := t.Missing(rs.required); len(missing) > 0 {
		rep.Issues = append(rep.Issues, Issue{
			IssueType: IssueMissingColumns,
			Column:    "*",
			Message:   "Missing required columns: " + strings.Join(missing, ", "),
			Count:     len(missing),
		})
		return rep
	}

	for _, col := range rs.dates {
		if n := countInvalidDates(t, col); n > 0 {
			rep.Issues = append(rep.Issues, Issue{IssueInvalidDate, col, "Unparseable dates", n})
		}
	}

	for _, col := range rs.numeric {
		bad, neg := countNumeric(t, col)
		if bad > 0 {
			rep.Issues = append(rep.Issues, Issue{IssueNonNumeric, col, "Non numeric values", bad})
		}
		if neg > 0 {
			rep.Issues = append(rep.Issues, Issue{IssueNegative, col, "Negative values", neg})
		}
	}

	if rs.inconsistent {
		if n := countDowntimeOverHours(t); n > 0 {
			rep.Issues = append(rep.Issues, Issue{
				IssueInconsistent, model.ColDowntimeHours, "Downtime greater than operated hours", n,
			})
		}
	}

	if len(rs.key) > 0 {
		if n := CountDuplicates(t, rs.key); n > 0 {
			rep.Issues = append(rep.Issues, Issue{IssueDuplicates, rs.keyColumn, rs.keyMessage, n})
		}
	}

	rep.Summary.OK = len(rep.Issues) == 0
	return rep
}

func countInvalidDates(t *tabular.Table, col string) int {
	idx := t.Index(col)
	n := 0
	for i := range t.Rows {
		if !model.ParseDate(t.Cell(i, idx)).Valid {
			n++
		}
	}
	return n
}

func countNumeric(t *tabular.Table, col string) (bad, neg int) {
	idx := t.Index(col)
	for i := range t.Rows {
		v := model.ParseFloat(t.Cell(i, idx))
		switch {
		case !v.Valid:
			bad++
		case v.Lt(0):
			neg++
		}
	}
	return bad, neg
}

func countDowntimeOverHours(t *tabular.Table) int {
	hIdx := t.Index(model.ColHoursOperated)
	dIdx := t.Index(model.ColDowntimeHours)
	n := 0
	for i := range t.Rows {
		hours := model.ParseFloat(t.Cell(i, hIdx))
		down := model.ParseFloat(t.Cell(i, dIdx))
		if hours.Valid && down.Gt(hours.Value) {
			n++
		}
	}
	return n
}

// CountDuplicates returns how many rows share their key with at least one other
// row. Every member of a duplicate group counts, not only the extras.
func CountDuplicates(t *tabular.Table, key []string) int {
	idx := make([]int, len(key))
	for i, k := range key {
		idx[i] = t.Index(k)
	}

	keys := make([]string, len(t.Rows))
	seen := make(map[string]int, len(t.Rows))
	parts := make([]string, len(idx))
	for r := range t.Rows {
		for i, j := range idx {
			parts[i] = t.Cell(r, j)
		}
		keys[r] = strings.Join(parts, "\x1f")
		seen[keys[r]]++
	}

	n := 0
	for _, k := range keys {
		if seen[k] > 1 {
			n++
		}
	}
	return n
}

// String renders the report as a short human-readable block.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rows=%d ok=%v\n", r.Summary.RowCount, r.Summary.OK)
	for _, is := range r.Issues {
		fmt.Fprintf(&sb, "  %-16s %-18s %6d  %s\n", is.IssueType, is.Column, is.Count, is.Message)
	}
	return sb.String()
}
