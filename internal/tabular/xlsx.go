package tabular

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Layouts for time-typed cells.
const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // rows to skip before the header
}

// ReadXLSX reads a worksheet and returns all rows as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		rows = append(rows, rowToStrings(row, f.Date1904))
	}
	return rows, nil
}

// ReadXLSXTable reads a worksheet whose first kept row is the header.
// Fully blank trailing rows are dropped.
func ReadXLSXTable(path string, opts XLSXOptions) (*Table, error) {
	rows, err := ReadXLSX(path, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("xlsx: %s has no header row", path)
	}

	t := &Table{Columns: rows[0], Rows: rows[1:]}
	for len(t.Rows) > 0 && blank(t.Rows[len(t.Rows)-1]) {
		t.Rows = t.Rows[:len(t.Rows)-1]
	}
	return t, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// rowToStrings returns the stored cell values. Display formats are ignored so
// numbers keep full precision and dates come out as YYYY-MM-DD.
func rowToStrings(row *xlsx.Row, date1904 bool) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cellValue(cell, date1904)
	}
	return cells
}

func cellValue(cell *xlsx.Cell, date1904 bool) string {
	if cell.IsTime() {
		if t, err := cell.GetTime(date1904); err == nil {
			return formatTime(t)
		}
		return cell.Value
	}
	if cell.Type() == xlsx.CellTypeNumeric {
		if v, err := cell.Float(); err == nil {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return cell.Value
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(dateTimeLayout)
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
