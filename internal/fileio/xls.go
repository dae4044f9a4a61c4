// Legacy .xls reader. The BIFF library exposes text only, so values are typed
// from their text and styles, widths and merges are not available.

package fileio

import (
	"bytes"
	"errors"
	"fmt"

	xls "github.com/extrame/xls"
)

// Workbooks exported by accounting software are mostly cp1251, sometimes UTF-8 or KOI8-R.
var xlsCharsets = []string{"windows-1251", "utf-8", "koi8-r"}

// scanCols caps how far right a row is scanned when its LastCol is unreliable.
const scanCols = 512

func readXLS(b []byte) (wb Workbook, err error) {
	defer func() {
		if p := recover(); p != nil {
			wb, err = nil, fmt.Errorf("xls: corrupt workbook: %v", p)
		}
	}()

	var book *xls.WorkBook
	var lastErr error
	for _, ch := range xlsCharsets {
		book, lastErr = xls.OpenReader(bytes.NewReader(b), ch)
		if lastErr == nil && book != nil {
			break
		}
	}
	if book == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, lastErr
	}

	sheet := book.GetSheet(0)
	if sheet == nil {
		return &Table{}, nil
	}
	maxCols := xlsWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cols := make([]string, maxCols)
		if row := xlsRow(sheet, i); row != nil {
			for j := range cols {
				cols[j] = row.Col(j)
			}
		}
		rows = append(rows, cols)
	}
	return textRows(rows, false), nil
}

// xlsRow returns nil for rows the sheet never declared; the library panics on them.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsWidth fixes the table width by scanning for the rightmost non-empty cell.
func xlsWidth(sheet *xls.WorkSheet) int {
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			continue
		}
		for j := scanCols - 1; j >= width; j-- {
			if row.Col(j) != "" {
				width = j + 1
				break
			}
		}
	}
	return width
}
