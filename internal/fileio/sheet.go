// Package fileio reads the first sheet of a workbook into a library-neutral view
// that the importer walks cell by cell.
package fileio

import (
	"iter"

	"github.com/sourabhkushwaha427/dms-server/internal/style"
)

// Column describes one column of the sheet. Width is in the workbook's native
// character units and only meaningful when Declared is true.
type Column struct {
	Width    float64
	Declared bool
}

// Cell is everything the importer reads from one cell.
//
// Value is nil, string, float64 or bool. When Formula is set, Result holds the
// cached formula result. Runs holds the text of each run of multi-run rich text.
type Cell struct {
	Value   any
	Formula string
	Result  any
	Runs    []string
	Style   style.Attrs
}

// Sheet is the capability a workbook reader must provide.
type Sheet interface {
	// Columns returns one entry per column within the sheet's extents.
	Columns() []Column
	// Rows yields every row within the extents. Each row has len(Columns()) cells,
	// including cells that are declared but empty.
	Rows() iter.Seq2[int, []Cell]
	// Merges returns the raw merge descriptors ("B1:B2") as stored in the file.
	// An error means the list itself could not be read.
	Merges() ([]string, error)
}

// Workbook is an open Sheet backed by a file or buffer.
type Workbook interface {
	Sheet
	Close() error
}

// Table is an in-memory Sheet. Text-only formats are read into one, and tests
// use it to feed the importer directly.
type Table struct {
	Cols   []Column
	Cells  [][]Cell
	Ranges []string
	// MergeErr is returned by Merges when set.
	MergeErr error
}

func (t *Table) width() int {
	return max(len(t.Cols), t.dataWidth())
}

func (t *Table) dataWidth() int {
	w := 0
	for _, row := range t.Cells {
		w = max(w, len(row))
	}
	return w
}

func (t *Table) Columns() []Column {
	cols := make([]Column, t.width())
	copy(cols, t.Cols)
	return cols
}

func (t *Table) Rows() iter.Seq2[int, []Cell] {
	return func(yield func(int, []Cell) bool) {
		w := t.width()
		for i, src := range t.Cells {
			row := src
			if len(row) < w {
				row = make([]Cell, w)
				copy(row, src)
			}
			if !yield(i, row) {
				return
			}
		}
	}
}

func (t *Table) Merges() ([]string, error) {
	return t.Ranges, t.MergeErr
}

func (t *Table) Close() error { return nil }

// textRows turns rows of plain text into a Table, typing numeric text as float64.
func textRows(rows [][]string, decimalComma bool) *Table {
	t := &Table{Cells: make([][]Cell, len(rows))}
	for i, rec := range rows {
		cells := make([]Cell, len(rec))
		for j, v := range rec {
			cells[j].Value = textValue(v, decimalComma)
		}
		t.Cells[i] = cells
	}
	return t
}
