package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ops-cockpit/internal/model"
	"github.com/sells-group/ops-cockpit/internal/quality"
	"github.com/sells-group/ops-cockpit/internal/tabular"
)

// Output formats.
const (
	formatTable = "table"
	formatCSV   = "csv"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	goodColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed)
	labelColor  = color.New(color.Bold)
)

var levelColors = map[model.RiskLevel]*color.Color{
	model.RiskLow:      goodColor,
	model.RiskMedium:   warnColor,
	model.RiskHigh:     badColor,
	model.RiskCritical: color.New(color.FgRed, color.Bold),
}

var (
	outFormat string
	outPath   string
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outFormat, "format", formatTable, "output format: table or csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write CSV to this file instead of stdout")
}

// emit writes t in the selected format. In table format only cols are shown;
// nil cols shows every column. CSV output always carries every column.
func emit(cmd *cobra.Command, t *tabular.Table, cols []string) error {
	if outPath != "" {
		if err := tabular.WriteCSVFile(outPath, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d rows)\n", goodColor.Sprint("wrote"), outPath, t.Len())
		return nil
	}
	switch outFormat {
	case formatCSV:
		return tabular.WriteCSV(cmd.OutOrStdout(), t)
	case formatTable, "":
		return printTable(cmd.OutOrStdout(), project(t, cols))
	default:
		return eris.Errorf("unknown format %q", outFormat)
	}
}

// project returns t restricted to cols, in cols order.
func project(t *tabular.Table, cols []string) *tabular.Table {
	if cols == nil {
		return t
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = t.Index(c)
	}
	out := tabular.New(cols...)
	for r := range t.Rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = t.Cell(r, j)
		}
		out.Append(row)
	}
	return out
}

func printTable(w io.Writer, t *tabular.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headerColor.Fprintln(tw, strings.Join(t.Columns, "\t")) //nolint:errcheck

	level := t.Index("risk_level")
	for _, row := range t.Rows {
		cells := append([]string(nil), row...)
		if level >= 0 && level < len(cells) {
			if c, ok := levelColors[model.RiskLevel(cells[level])]; ok {
				cells[level] = c.Sprint(cells[level])
			}
		}
		for i, v := range cells {
			if v == "" {
				cells[i] = "-"
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return eris.Wrap(tw.Flush(), "flush table")
}

func printReport(w io.Writer, name string, rep quality.Report) {
	status := goodColor.Sprint("OK")
	if !rep.Summary.OK {
		status = warnColor.Sprintf("%d issue(s)", len(rep.Issues))
	}
	fmt.Fprintf(w, "%s  %d rows, %s\n", labelColor.Sprint(name), rep.Summary.RowCount, status)
	for _, is := range rep.Issues {
		c := warnColor
		if is.IssueType == quality.IssueMissingColumns {
			c = badColor
		}
		fmt.Fprintf(w, "  %s\t%s\t%s (%d)\n", c.Sprint(is.IssueType), is.Column, is.Message, is.Count)
	}
}
