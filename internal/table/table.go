package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Table is an in-memory delimited file: a header row naming the columns and
// string-typed body rows. Heterogeneous source schemas are kept untyped here;
// typing happens during normalization or record mapping.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Load reads a comma-delimited file with a header row. Ragged rows are
// tolerated: short rows are padded with empty cells, long rows truncated to
// the header width.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("table %s is empty", path)
	}

	header := make([]string, len(all[0]))
	for i, name := range all[0] {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([][]string, 0, len(all)-1)
	for _, raw := range all[1:] {
		row := make([]string, len(header))
		for i := range header {
			if i < len(raw) {
				row[i] = raw[i]
			}
		}
		rows = append(rows, row)
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// DropColumns removes every column whose name fails the keep predicate,
// rewriting all rows in place.
func (t *Table) DropColumns(keep func(name string) bool) {
	kept := make([]int, 0, len(t.Columns))
	for i, col := range t.Columns {
		if keep(col) {
			kept = append(kept, i)
		}
	}
	if len(kept) == len(t.Columns) {
		return
	}

	cols := make([]string, len(kept))
	for j, i := range kept {
		cols[j] = t.Columns[i]
	}
	for r, row := range t.Rows {
		next := make([]string, len(kept))
		for j, i := range kept {
			next[j] = row[i]
		}
		t.Rows[r] = next
	}
	t.Columns = cols
}

// cell returns the trimmed cell value at (row, col), or "" when col is -1.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ParseInt converts a cell to an integer, accepting float renderings of
// whole numbers ("12.0"). Unparseable cells become 0, matching the
// fill-missing-with-zero policy applied during sanitization.
func ParseInt(s string) int64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// ParseFloat converts a cell to a float, with 0 for unparseable cells.
func ParseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return 0
}
