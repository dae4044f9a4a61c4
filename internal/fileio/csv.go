package fileio

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads a delimited text file into a Table, detecting the encoding and
// converting it to UTF-8. UTF-8 (with or without BOM), UTF-16, Windows-1251,
// KOI8-R and ISO-8859-1 are recognised.
func readCSV(r io.Reader) (Workbook, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	case "koi8-r":
		dec = transform.NewReader(br, charmap.KOI8R.NewDecoder())
	case "iso-8859-1", "windows-1252":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "utf-16le":
		dec = transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case "utf-16be":
		dec = transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	default:
		dec = transform.NewReader(br, unicode.UTF8BOM.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = sniffComma(peek)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	// a ',' delimiter rules out the decimal comma
	return textRows(rows, cr.Comma == ';'), nil
}

// sniffComma picks ';' over ',' when the first line uses it more, as locales with a
// decimal comma do.
func sniffComma(peek []byte) rune {
	line, _, _ := strings.Cut(string(peek), "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
