package fileio

import (
	"io"

	xlsb "github.com/TsubasaBE/go-xlsb"

	"github.com/sourabhkushwaha427/dms-server/internal/cellref"
)

// readXLSB loads the first sheet of a binary workbook into a Table. The format's
// style table carries number formats only, so cells come back unstyled.
func readXLSB(r io.ReaderAt, size int64) (Workbook, error) {
	wb, err := xlsb.OpenReader(r, size)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	ws, err := wb.Sheet(1)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for row := range ws.Rows(false) {
		cells := make([]Cell, len(row))
		for i, c := range row {
			v := c.V
			if _, ok := v.(float64); ok && wb.Styles.IsDate(c.Style) {
				v = wb.FormatCell(v, c.Style)
			}
			cells[i].Value = v
		}
		t.Cells = append(t.Cells, cells)
	}

	for _, col := range ws.Cols {
		if col.C2 >= len(t.Cols) {
			grown := make([]Column, col.C2+1)
			copy(grown, t.Cols)
			t.Cols = grown
		}
		for c := col.C1; c <= col.C2; c++ {
			t.Cols[c] = Column{Width: col.Width, Declared: col.Width > 0}
		}
	}
	// <col> records may run far past the data (whole-row formatting); keep the grid tight
	if w := t.dataWidth(); len(t.Cols) > w {
		t.Cols = t.Cols[:w]
	}

	for _, m := range ws.MergeCells {
		start := cellref.CellRef(m.R, m.C)
		end := cellref.CellRef(m.R+max(m.H, 1)-1, m.C+max(m.W, 1)-1)
		t.Ranges = append(t.Ranges, start+":"+end)
	}
	return t, nil
}
