package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourabhkushwaha427/dms-server/internal/utils"
)

// ErrUnsupportedFile is returned for file names whose extension has no reader.
var ErrUnsupportedFile = errors.New("unsupported file")

// Supported reports whether filename has an extension Open can read.
func Supported(filename string) bool {
	switch ext(filename) {
	case ".xlsx", ".xlsm", ".xls", ".xlsb", ".csv":
		return true
	}
	return false
}

// Open reads the workbook at path. filename carries the original upload name and
// picks the reader; when empty, path itself is used.
func Open(path, filename string) (Workbook, error) {
	if filename == "" {
		filename = path
	}
	if !Supported(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(filename))
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return openBytes(b, filename)
}

// OpenReader is Open for an in-memory source.
func OpenReader(r io.Reader, filename string) (Workbook, error) {
	if !Supported(filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(filename))
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return openBytes(b, filename)
}

func openBytes(b []byte, filename string) (Workbook, error) {
	switch ext(filename) {
	case ".xlsx", ".xlsm":
		return readXLSX(bytes.NewReader(b))
	case ".xls":
		return readXLS(b)
	case ".xlsb":
		return readXLSB(bytes.NewReader(b), int64(len(b)))
	case ".csv":
		return readCSV(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(filename))
	}
}

func ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// textValue types a cell read from a text-only format: blanks become nil, numeric
// text becomes float64, everything else stays a string. decimalComma is set when
// the source uses "," as its decimal separator.
func textValue(s string, decimalComma bool) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	if f, ok := utils.ParseNumber(v, decimalComma); ok {
		return f
	}
	return s
}
