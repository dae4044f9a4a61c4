package fileio

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"testing"
)

// biff12 writes the record stream of an xlsb part.
type biff12 struct{ bytes.Buffer }

func (b *biff12) rec(id int, payload ...[]byte) {
	if id < 0x80 {
		b.WriteByte(byte(id))
	} else {
		b.WriteByte(byte(id & 0xFF))
		b.WriteByte(byte(id >> 8))
	}
	var body []byte
	for _, p := range payload {
		body = append(body, p...)
	}
	n := len(body)
	for {
		c := byte(n & 0x7F)
		n >>= 7
		if n == 0 {
			b.WriteByte(c)
			break
		}
		b.WriteByte(c | 0x80)
	}
	b.Write(body)
}

func le32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func wideString(s string) []byte {
	runes := []rune(s)
	out := le32(uint32(len(runes)))
	for _, r := range runes {
		out = binary.LittleEndian.AppendUint16(out, uint16(r))
	}
	return out
}

// buildXLSB returns a one-sheet binary workbook:
//
//	A1 = 42, B1 = "Grade", A5 = "Header"
//	column B is 20 wide, columns D:GS are 12 wide
//	A1:A3 and A5:C5 are merged
func buildXLSB(t *testing.T) []byte {
	t.Helper()

	var book biff12
	book.rec(0x0183)
	book.rec(0x018F)
	book.rec(0x019C, le32(0), le32(1), wideString("rId1"), wideString("Data"))
	book.rec(0x0190)
	book.rec(0x0184)

	float := func(col uint32, v float64) []byte {
		return append(append(le32(col), le32(0)...), binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))...)
	}
	text := func(col uint32, s string) []byte {
		return append(append(le32(col), le32(0)...), wideString(s)...)
	}

	var ws biff12
	ws.rec(0x0181)
	ws.rec(0x0194, le32(0), le32(4), le32(0), le32(2))
	ws.rec(0x003C, le32(1), le32(1), le32(20*256), le32(0))
	ws.rec(0x003C, le32(3), le32(200), le32(12*256), le32(0))
	ws.rec(0x0191)
	ws.rec(0x0000, le32(0))
	ws.rec(0x0005, float(0, 42))
	ws.rec(0x0008, text(1, "Grade"))
	ws.rec(0x0000, le32(1))
	ws.rec(0x0000, le32(2))
	ws.rec(0x0000, le32(4))
	ws.rec(0x0008, text(0, "Header"))
	ws.rec(0x0192)
	ws.rec(0x00E5, le32(0), le32(2), le32(0), le32(0))
	ws.rec(0x00E5, le32(4), le32(4), le32(0), le32(2))
	ws.rec(0x0182)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"xl/_rels/workbook.bin.rels", []byte(`<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.bin"/>` +
			`</Relationships>`)},
		{"xl/workbook.bin", book.Bytes()},
		{"xl/worksheets/sheet1.bin", ws.Bytes()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			t.Fatalf("zip write %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestXLSBValues(t *testing.T) {
	wb, err := OpenReader(bytes.NewReader(buildXLSB(t)), "book.XLSB")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	rows := collect(wb)
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	tests := []struct {
		row, col int
		want     any
	}{
		{0, 0, 42.0},
		{0, 1, "Grade"},
		{0, 2, nil},
		{1, 0, nil},
		{3, 1, nil},
		{4, 0, "Header"},
		{4, 1, nil},
	}
	for _, tc := range tests {
		if got := rows[tc.row][tc.col].Value; got != tc.want {
			t.Errorf("cell %d,%d = %#v, want %#v", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestXLSBGeometry(t *testing.T) {
	wb, err := OpenReader(bytes.NewReader(buildXLSB(t)), "book.xlsb")
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer wb.Close()

	merges, err := wb.Merges()
	if err != nil {
		t.Fatalf("Merges: %v", err)
	}
	if want := []string{"A1:A3", "A5:C5"}; !reflect.DeepEqual(merges, want) {
		t.Fatalf("merges = %v, want %v", merges, want)
	}

	want := []Column{{}, {Width: 20, Declared: true}, {}}
	if got := wb.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %+v, want %+v", got, want)
	}
}

func TestXLSBCorrupt(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"not a zip", []byte("definitely not a workbook")},
		{"zip without workbook part", emptyZip(t)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := OpenReader(bytes.NewReader(tc.in), "bad.xlsb"); err == nil {
				t.Fatal("corrupt workbook opened")
			}
		})
	}
}

func emptyZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := zip.NewWriter(&buf).Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
