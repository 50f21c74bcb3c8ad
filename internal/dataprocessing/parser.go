package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawTable is one spreadsheet's tabular payload before normalization:
// the detected header row plus every data row below it, all as strings.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of a named column, matched
// case-insensitively with surrounding whitespace ignored. Returns -1
// when the source table lacks the column.
func (t *RawTable) ColumnIndex(name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, header := range t.Headers {
		if strings.ToLower(strings.TrimSpace(header)) == want {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell value at (row, col), tolerating ragged
// rows shorter than the header.
func (t *RawTable) Cell(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// ParseWorkbook reads a spreadsheet price export and extracts its first
// sheet that carries tabular data. The header row is the first row with
// any non-blank cell; trailing all-blank rows are discarded.
func ParseWorkbook(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Warn("skipping unreadable sheet",
				slog.String("path", path),
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}

		table := tableFromRows(rows)
		if table == nil {
			continue
		}

		slog.Debug("parsed workbook sheet",
			slog.String("path", path),
			slog.String("sheet", name),
			slog.Int("rows", len(table.Rows)))
		return table, nil
	}

	return nil, fmt.Errorf("no sheet with tabular data in %s", path)
}

// tableFromRows locates the header row and slices out the data rows.
// Returns nil when the sheet holds nothing usable.
func tableFromRows(rows [][]string) *RawTable {
	headerRow := -1
	for i, row := range rows {
		if rowHasData(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil
	}

	lastDataRow := headerRow
	for i := len(rows) - 1; i > headerRow; i-- {
		if rowHasData(rows[i]) {
			lastDataRow = i
			break
		}
	}

	return &RawTable{
		Headers: rows[headerRow],
		Rows:    rows[headerRow+1 : lastDataRow+1],
	}
}

func rowHasData(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}
