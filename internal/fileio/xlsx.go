package fileio

import (
	"errors"
	"io"
	"iter"
	"strconv"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"github.com/sourabhkushwaha427/dms-server/internal/cellref"
	"github.com/sourabhkushwaha427/dms-server/internal/style"
)

// undeclaredWidth replaces the sheet's default column width after opening, so
// GetColWidth returns it exactly for columns without a <col> width.
const undeclaredWidth = 1.0 / 1024

// maxDenseCells bounds the grid when a stale <dimension> claims the whole sheet.
const maxDenseCells = 4 << 20

type xlsxFormat struct {
	attrs style.Attrs
	date  bool
}

type xlsxSheet struct {
	f          *excelize.File
	name       string
	rows, cols int
	formats    map[int]xlsxFormat
	merges     []string
	mergeErr   error
}

func readXLSX(r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	name := f.GetSheetName(0)
	if name == "" {
		f.Close()
		return nil, errors.New("xlsx: workbook has no sheets")
	}
	s := &xlsxSheet{f: f, name: name, formats: map[int]xlsxFormat{}}
	s.detachMerges()
	w := undeclaredWidth
	if err := f.SetSheetProps(name, &excelize.SheetPropsOptions{DefaultColWidth: &w}); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.measure(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// detachMerges records the merged ranges and then drops them from the open
// file. excelize resolves every cell inside a merged range to its top-left
// cell, which would copy the anchor's value and style over the covered cells.
// The file is never saved, so the workbook on disk is untouched.
func (s *xlsxSheet) detachMerges() {
	merges, err := s.f.GetMergeCells(s.name)
	if err != nil {
		s.mergeErr = err
		return
	}
	if len(merges) == 0 {
		return
	}
	s.merges = make([]string, 0, len(merges))
	for _, m := range merges {
		s.merges = append(s.merges, m[0])
	}
	first := cellref.CellRef(0, 0)
	last := cellref.CellRef(excelize.TotalRows-1, excelize.MaxColumns-1)
	if err := s.f.UnmergeCell(s.name, first, last); err != nil {
		s.merges, s.mergeErr = nil, err
	}
}

// measure takes the larger of the declared dimension and the cells actually
// present, so styled-but-empty cells and merge anchors stay inside the grid.
func (s *xlsxSheet) measure() error {
	rows, err := s.f.GetRows(s.name)
	if err != nil {
		return err
	}
	dataRows, dataCols := len(rows), 0
	for _, row := range rows {
		dataCols = max(dataCols, len(row))
	}
	s.rows, s.cols = dataRows, dataCols

	if dim, err := s.f.GetSheetDimension(s.name); err == nil && dim != "" {
		s.grow(dim)
	}
	for _, ref := range s.merges {
		s.grow(ref)
	}
	if s.rows*s.cols > maxDenseCells {
		s.rows, s.cols = dataRows, dataCols
	}
	return nil
}

func (s *xlsxSheet) grow(ref string) {
	if !strings.Contains(ref, ":") {
		ref += ":" + ref
	}
	r, err := cellref.DecodeRange(ref)
	if err != nil {
		return
	}
	s.rows = max(s.rows, r.End.Row+1)
	s.cols = max(s.cols, r.End.Col+1)
}

func (s *xlsxSheet) Columns() []Column {
	cols := make([]Column, s.cols)
	for i := range cols {
		w, err := s.f.GetColWidth(s.name, cellref.ColumnLabel(i))
		if err == nil && w != undeclaredWidth {
			cols[i] = Column{Width: w, Declared: true}
		}
	}
	return cols
}

func (s *xlsxSheet) Rows() iter.Seq2[int, []Cell] {
	return func(yield func(int, []Cell) bool) {
		for r := 0; r < s.rows; r++ {
			row := make([]Cell, s.cols)
			for c := range row {
				row[c] = s.cell(cellref.CellRef(r, c))
			}
			if !yield(r, row) {
				return
			}
		}
	}
}

func (s *xlsxSheet) Merges() ([]string, error) {
	return s.merges, s.mergeErr
}

func (s *xlsxSheet) Close() error { return s.f.Close() }

func (s *xlsxSheet) cell(ref string) Cell {
	format := s.format(ref)
	c := Cell{Style: format.attrs}
	if formula, err := s.f.GetCellFormula(s.name, ref); err == nil && formula != "" {
		c.Formula = formula
		c.Result = s.value(ref, format)
		return c
	}
	// excelize reports plain shared strings as one run; only real rich text has more
	if runs, err := s.f.GetCellRichText(s.name, ref); err == nil && len(runs) > 1 {
		c.Runs = make([]string, len(runs))
		for i, run := range runs {
			c.Runs[i] = run.Text
		}
		return c
	}
	c.Value = s.value(ref, format)
	return c
}

func (s *xlsxSheet) value(ref string, format xlsxFormat) any {
	raw, err := s.f.GetCellValue(s.name, ref, excelize.Options{RawCellValue: true})
	if err != nil || raw == "" {
		return nil
	}
	typ, err := s.f.GetCellType(s.name, ref)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw
		}
		if format.date {
			if shown, err := s.f.GetCellValue(s.name, ref); err == nil && shown != "" {
				return shown
			}
		}
		return n
	default:
		return raw
	}
}

func (s *xlsxSheet) format(ref string) xlsxFormat {
	id, err := s.f.GetCellStyle(s.name, ref)
	// xf 0 is the workbook default, not cell formatting
	if err != nil || id == 0 {
		return xlsxFormat{}
	}
	if f, ok := s.formats[id]; ok {
		return f
	}
	st, err := s.f.GetStyle(id)
	var f xlsxFormat
	if err == nil && st != nil {
		f = xlsxFormat{attrs: attrsFromStyle(st), date: isDateFormat(st)}
	}
	s.formats[id] = f
	return f
}

func attrsFromStyle(st *excelize.Style) style.Attrs {
	var a style.Attrs
	if st.Font != nil {
		a.Bold = st.Font.Bold
		a.Italic = st.Font.Italic
		a.Underline = st.Font.Underline != "" && st.Font.Underline != "none"
		a.Color = nativeColor(st.Font.Color)
	}
	if st.Fill.Type == "pattern" && st.Fill.Pattern == 1 && len(st.Fill.Color) > 0 {
		a.Background = nativeColor(st.Fill.Color[0])
	}
	if st.Alignment != nil {
		if st.Alignment.Horizontal != "general" {
			a.Horizontal = st.Alignment.Horizontal
		}
		a.Vertical = st.Alignment.Vertical
	}
	return a
}

// nativeColor keeps RGB and ARGB values and drops theme or indexed leftovers.
func nativeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	if len(c) != 6 && len(c) != 8 {
		return ""
	}
	if _, err := style.HexToArgb(c[len(c)-6:]); err != nil {
		return ""
	}
	return c
}

func isDateFormat(st *excelize.Style) bool {
	if st.CustomNumFmt != nil {
		f := strings.ToLower(*st.CustomNumFmt)
		return strings.ContainsAny(f, "ydhs") || strings.Contains(f, "mm")
	}
	switch {
	case st.NumFmt >= 14 && st.NumFmt <= 22, st.NumFmt >= 45 && st.NumFmt <= 47:
		return true
	}
	return false
}
