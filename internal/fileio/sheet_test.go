package fileio

import (
	"errors"
	"testing"
)

func TestTableDense(t *testing.T) {
	tab := &Table{
		Cols:  []Column{{Width: 12, Declared: true}, {}, {}},
		Cells: [][]Cell{{{Value: "a"}}, {{Value: "b"}, {Value: 2.0}}},
	}
	if got := len(tab.Columns()); got != 3 {
		t.Fatalf("columns = %d, want 3", got)
	}
	for i, row := range tab.Rows() {
		if len(row) != 3 {
			t.Fatalf("row %d has %d cells, want 3", i, len(row))
		}
	}
	// padding must not write through to the source rows
	if len(tab.Cells[0]) != 1 {
		t.Fatal("source row modified")
	}
}

func TestTableMerges(t *testing.T) {
	boom := errors.New("boom")
	tab := &Table{Ranges: []string{"A1:B1"}, MergeErr: boom}
	ranges, err := tab.Merges()
	if !errors.Is(err, boom) || len(ranges) != 1 {
		t.Fatalf("Merges = %v, %v", ranges, err)
	}
}
