package tabular

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSXTable(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Runs": {
			{"Equip", "Heures", "revenue"},
			{"EQ-001", "8", "1000"},
			{"EQ-002", "6.5", "800"},
		},
	})

	tb, err := ReadXLSXTable(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Equip", "Heures", "revenue"}, tb.Columns)
	assert.Equal(t, [][]string{{"EQ-001", "8", "1000"}, {"EQ-002", "6.5", "800"}}, tb.Rows)
}

func TestReadXLSXTable_TypedCells(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Runs")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"date", "revenue", "fuel_cost", "hours_operated", "equipment_id"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	row.AddCell().SetDate(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	row.AddCell().SetFloatWithFormat(1234.56, "#,##0.00")
	row.AddCell().SetFloatWithFormat(210.75, "0")
	row.AddCell().SetFloat(8.25)
	row.AddCell().SetString("EQ-007")

	path := filepath.Join(t.TempDir(), "typed.xlsx")
	require.NoError(t, f.Save(path))

	tb, err := ReadXLSXTable(path, XLSXOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, tb.Len())
	assert.Equal(t, []string{"2025-03-14", "1234.56", "210.75", "8.25", "EQ-007"}, tb.Rows[0])
}

func TestReadXLSXTable_MatchesCSV(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Runs")
	require.NoError(t, err)
	header := sheet.AddRow()
	header.AddCell().SetString("date")
	header.AddCell().SetString("revenue")
	row := sheet.AddRow()
	row.AddCell().SetDate(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	row.AddCell().SetFloatWithFormat(999.125, "0.0")
	path := filepath.Join(t.TempDir(), "runs.xlsx")
	require.NoError(t, f.Save(path))

	fromXLSX, err := ReadXLSXTable(path, XLSXOptions{})
	require.NoError(t, err)

	fromCSV, err := ReadCSV(t.Context(), strings.NewReader("date,revenue\n2025-01-02,999.125\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, fromCSV.Columns, fromXLSX.Columns)
	assert.Equal(t, fromCSV.Rows, fromXLSX.Rows)
}

func TestReadXLSXTable_SkipRows(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Sheet1": {
			{"Export generated by ERP"},
			{"a", "b"},
			{"1", "2"},
		},
	})

	tb, err := ReadXLSXTable(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tb.Columns)
	assert.Equal(t, 1, tb.Len())
}

func TestReadXLSX_SheetByName(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Data": {{"x"}, {"1"}},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}, {"1"}}, rows)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadXLSX_SheetIndexOutOfRange(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{"Sheet1": {{"a"}}})

	_, err := ReadXLSX(path, XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadXLSX_BadFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "missing.xlsx"), XLSXOptions{})
	require.Error(t, err)
}
