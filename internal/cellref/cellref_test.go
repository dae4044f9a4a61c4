package cellref

import (
	"errors"
	"testing"

	excelize "github.com/xuri/excelize/v2"
)

func TestCellRef(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "A1"},
		{0, 25, "Z1"},
		{0, 26, "AA1"},
		{1, 27, "AB2"},
		{9, 701, "ZZ10"},
		{0, 702, "AAA1"},
		{1048575, 16383, "XFD1048576"},
	}
	for _, tc := range tests {
		if got := CellRef(tc.row, tc.col); got != tc.want {
			t.Errorf("CellRef(%d, %d) = %q, want %q", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for row := 0; row < 40; row += 3 {
		for col := 0; col < 20000; col += 7 {
			got, err := ParseCellRef(CellRef(row, col))
			if err != nil {
				t.Fatalf("ParseCellRef(CellRef(%d, %d)): %v", row, col, err)
			}
			if got.Row != row || got.Col != col {
				t.Fatalf("round trip (%d, %d) -> %+v", row, col, got)
			}
		}
	}
}

func TestColumnLabelMatchesExcelize(t *testing.T) {
	for col := 0; col < 16384; col++ {
		want, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			t.Fatalf("excelize: %v", err)
		}
		if got := ColumnLabel(col); got != want {
			t.Fatalf("ColumnLabel(%d) = %q, excelize says %q", col, got, want)
		}
	}
}

func TestColumnIndex(t *testing.T) {
	t.Run("lower case", func(t *testing.T) {
		got, err := ColumnIndex("ab")
		if err != nil || got != 27 {
			t.Fatalf("ColumnIndex(ab) = %d, %v", got, err)
		}
	})
	for _, in := range []string{"", "A1", "Ä", "A-B", "AAAAAAAAAAAAAA"} {
		if _, err := ColumnIndex(in); !errors.Is(err, ErrMalformedLabel) {
			t.Errorf("ColumnIndex(%q) err = %v, want ErrMalformedLabel", in, err)
		}
	}
}

func TestParseCellRefErrors(t *testing.T) {
	for _, in := range []string{"", "A", "12", "A0", "A1B", "1A", "A-1", "A 1"} {
		if _, err := ParseCellRef(in); !errors.Is(err, ErrMalformedLabel) {
			t.Errorf("ParseCellRef(%q) err = %v, want ErrMalformedLabel", in, err)
		}
	}
}

func TestParseCellRefAbsolute(t *testing.T) {
	got, err := ParseCellRef("$C$5")
	if err != nil {
		t.Fatalf("ParseCellRef: %v", err)
	}
	if got != (Address{Row: 4, Col: 2}) {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeRange(t *testing.T) {
	r, err := DecodeRange("A1:C3")
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	if colspan, rowspan := r.Spans(); colspan != 3 || rowspan != 3 {
		t.Fatalf("spans = %d x %d, want 3 x 3", colspan, rowspan)
	}

	r, err = DecodeRange("A1:A1")
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	if colspan, rowspan := r.Spans(); colspan != 1 || rowspan != 1 {
		t.Fatalf("spans = %d x %d, want 1 x 1", colspan, rowspan)
	}

	r, err = DecodeRange("B2:A1")
	if err != nil {
		t.Fatalf("DecodeRange reversed: %v", err)
	}
	if r.Start != (Address{0, 0}) || r.End != (Address{1, 1}) {
		t.Fatalf("reversed range not normalised: %+v", r)
	}
}

func TestDecodeRangeErrors(t *testing.T) {
	for _, in := range []string{"A1", "A1-B2", ":B2", "A1:", "A1:B0", "??:B2"} {
		_, err := DecodeRange(in)
		if !errors.Is(err, ErrMalformedRange) {
			t.Errorf("DecodeRange(%q) err = %v, want ErrMalformedRange", in, err)
		}
	}
	_, err := DecodeRange("A1:ZZ")
	if !errors.Is(err, ErrMalformedLabel) {
		t.Errorf("side error should stay inspectable, got %v", err)
	}
}
