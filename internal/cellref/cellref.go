// Package cellref maps zero-based (row, column) pairs to spreadsheet labels ("A1") and back.
package cellref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrMalformedLabel = errors.New("malformed cell label")
	ErrMalformedRange = errors.New("malformed cell range")
)

// maxLetters keeps ColumnIndex inside int64.
const maxLetters = 13

// Address is a zero-based cell position.
type Address struct {
	Row int
	Col int
}

func (a Address) String() string { return CellRef(a.Row, a.Col) }

// Range is an inclusive block of cells.
type Range struct {
	Start Address
	End   Address
}

// Spans returns the number of columns and rows covered by the range.
func (r Range) Spans() (colspan, rowspan int) {
	return r.End.Col - r.Start.Col + 1, r.End.Row - r.Start.Row + 1
}

// ColumnLabel encodes a zero-based column index in bijective base-26: 0 → "A", 25 → "Z", 26 → "AA".
func ColumnLabel(col int) string {
	if col < 0 {
		return ""
	}
	var buf [16]byte
	i := len(buf)
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		i--
		buf[i] = byte('A' + (n-1)%26)
	}
	return string(buf[i:])
}

// ColumnIndex is the inverse of ColumnLabel. Letters are case-insensitive.
func ColumnIndex(letters string) (int, error) {
	if letters == "" || len(letters) > maxLetters {
		return 0, fmt.Errorf("%w: column %q", ErrMalformedLabel, letters)
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		default:
			return 0, fmt.Errorf("%w: column %q", ErrMalformedLabel, letters)
		}
		n = n*26 + int(c-'A'+1)
	}
	return n - 1, nil
}

// CellRef renders a zero-based position as a label, e.g. (1, 27) → "AB2".
func CellRef(row, col int) string {
	return ColumnLabel(col) + strconv.Itoa(row+1)
}

// ParseCellRef splits a label into its letters and digits. "$" markers of absolute
// references are ignored.
func ParseCellRef(ref string) (Address, error) {
	s := strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	split := 0
	for split < len(s) && isLetter(s[split]) {
		split++
	}
	letters, digits := s[:split], s[split:]
	if letters == "" || digits == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrMalformedLabel, ref)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Address{}, fmt.Errorf("%w: %q", ErrMalformedLabel, ref)
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row < 1 {
		return Address{}, fmt.Errorf("%w: %q", ErrMalformedLabel, ref)
	}
	col, err := ColumnIndex(letters)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrMalformedLabel, ref)
	}
	return Address{Row: row - 1, Col: col}, nil
}

// DecodeRange parses "A1:C3". Both sides are required; reversed corners are normalised
// so that Start is always the top-left cell.
func DecodeRange(r string) (Range, error) {
	left, right, ok := strings.Cut(r, ":")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q has no separator", ErrMalformedRange, r)
	}
	start, err := ParseCellRef(left)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", ErrMalformedRange, err)
	}
	end, err := ParseCellRef(right)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %w", ErrMalformedRange, err)
	}
	if end.Row < start.Row {
		start.Row, end.Row = end.Row, start.Row
	}
	if end.Col < start.Col {
		start.Col, end.Col = end.Col, start.Col
	}
	return Range{Start: start, End: end}, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
