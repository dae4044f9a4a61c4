package service

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	excelize "github.com/xuri/excelize/v2"

	"github.com/sourabhkushwaha427/dms-server/internal/cellref"
	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
	"github.com/sourabhkushwaha427/dms-server/internal/richtext"
	"github.com/sourabhkushwaha427/dms-server/internal/style"
	"github.com/sourabhkushwaha427/dms-server/internal/validation"
)

const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// RichTextLayout is the page layout used for rich-text exports.
var RichTextLayout = richtext.Options{TableSplit: false, Footer: true, PageNumbers: true}

// Download is a prepared export. Nothing is generated until WriteTo runs.
type Download struct {
	Filename    string
	ContentType string

	write func(w io.Writer) error
}

// WriteTo generates the file straight into w. Builder errors are wrapped in
// ErrGenerationFailure; by then part of the output may already be written.
func (d *Download) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := d.write(cw); err != nil {
		return cw.n, fmt.Errorf("%w: %w", ErrGenerationFailure, err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type Exporter struct {
	logger zerolog.Logger
	gen    *richtext.Generator
}

// NewExporter returns an Exporter rendering rich text with gen; a nil gen gets
// one with RichTextLayout.
func NewExporter(logger zerolog.Logger, gen *richtext.Generator) *Exporter {
	if gen == nil {
		gen = richtext.New(RichTextLayout)
	}
	return &Exporter{logger: logger, gen: gen}
}

// Prepare checks doc and decodes its content. Unsupported kinds and undecodable
// sheet content are rejected here, before anything is generated.
func (ex *Exporter) Prepare(doc model.Document) (*Download, error) {
	logger := ex.logger.With().Str("doc", doc.ID.String()).Logger()
	switch doc.SourceType {
	case model.SourceSheet:
		content, err := model.DecodeContent(doc.ContentData)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedContent, err)
		}
		return &Download{
			Filename:    Filename(doc.Title, "xlsx"),
			ContentType: MimeXLSX,
			write:       func(w io.Writer) error { return writeSheet(w, content, logger) },
		}, nil
	case model.SourceRichText:
		src := validation.SanitizeHTML(model.DecodeRichText(doc.ContentData))
		if strings.TrimSpace(src) == "" {
			src = model.EmptyRichText
		}
		return &Download{
			Filename:    Filename(doc.Title, "docx"),
			ContentType: MimeDOCX,
			write:       func(w io.Writer) error { return ex.gen.Generate(w, src) },
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentKind, doc.SourceType)
	}
}

// Filename is "<title>.<ext>" with markup, separators and control characters
// removed, falling back to "document".
func Filename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == '"', unicode.IsControl(r):
			return -1
		}
		return r
	}, validation.StripTags(title))
	name = strings.Trim(strings.TrimSpace(name), ".")
	if name == "" {
		name = defaultTitle
	}
	return name + "." + ext
}

func writeSheet(w io.Writer, c model.Content, logger zerolog.Logger) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	width := 0
	for r, row := range c.Grid {
		if r >= excelize.TotalRows {
			logger.Debug().Int("rows", len(c.Grid)).Msg("grid taller than a worksheet, rest dropped")
			break
		}
		if len(row) > excelize.MaxColumns {
			row = row[:excelize.MaxColumns]
		}
		width = max(width, len(row))
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cellref.CellRef(r, 0), &row); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}
	inGrid := func(a cellref.Address) bool {
		return a.Row < min(len(c.Grid), excelize.TotalRows) && a.Col < width
	}

	for i, px := range c.Columns {
		if i >= excelize.MaxColumns {
			break
		}
		if px <= 0 {
			continue
		}
		col := cellref.ColumnLabel(i)
		if err := f.SetColWidth(sheet, col, col, float64(px)/model.PixelsPerWidthUnit); err != nil {
			logger.Debug().Err(err).Str("col", col).Msg("skip column width")
		}
	}

	for _, label := range slices.Sorted(maps.Keys(c.Merges)) {
		span := c.Merges[label]
		start, err := cellref.ParseCellRef(label)
		if err != nil {
			logger.Warn().Err(err).Msg("skip merge")
			continue
		}
		if !inGrid(start) {
			logger.Debug().Str("cell", label).Msg("merge outside grid dropped")
			continue
		}
		colspan, rowspan := max(span[0], 1), max(span[1], 1)
		if colspan == 1 && rowspan == 1 {
			continue
		}
		end := cellref.CellRef(start.Row+rowspan-1, start.Col+colspan-1)
		if err := f.MergeCell(sheet, start.String(), end); err != nil {
			logger.Warn().Err(err).Str("cell", label).Msg("skip merge")
		}
	}

	for _, label := range slices.Sorted(maps.Keys(c.Styles)) {
		addr, err := cellref.ParseCellRef(label)
		if err != nil {
			logger.Warn().Err(err).Msg("skip style")
			continue
		}
		if !inGrid(addr) {
			logger.Debug().Str("cell", label).Msg("style outside grid dropped")
			continue
		}
		attrs, err := style.Parse(c.Styles[label])
		if err != nil {
			logger.Warn().Err(err).Str("cell", label).Msg("style partly applied")
		}
		if attrs.IsZero() {
			continue
		}
		if err := applyStyle(f, sheet, addr.String(), attrs); err != nil {
			logger.Warn().Err(err).Str("cell", label).Msg("skip style")
		}
	}

	return f.Write(w)
}

// applyStyle layers attrs over the cell's current style; attributes not in attrs
// keep their value.
func applyStyle(f *excelize.File, sheet, ref string, a style.Attrs) error {
	id, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return err
	}
	st, err := f.GetStyle(id)
	if err != nil {
		return err
	}
	if st.Font == nil {
		st.Font = &excelize.Font{}
	}
	if a.Bold {
		st.Font.Bold = true
	}
	if a.Italic {
		st.Font.Italic = true
	}
	if a.Underline {
		st.Font.Underline = "single"
	}
	if a.Color != "" {
		st.Font.Color = style.ArgbToHex(a.Color)
		st.Font.ColorTheme, st.Font.ColorTint = nil, 0
	}
	if a.Background != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{style.ArgbToHex(a.Background)}}
	}
	if a.Horizontal != "" || a.Vertical != "" {
		if st.Alignment == nil {
			st.Alignment = &excelize.Alignment{}
		}
		if a.Horizontal != "" {
			st.Alignment.Horizontal = a.Horizontal
		}
		if a.Vertical != "" {
			st.Alignment.Vertical = a.Vertical
		}
	}
	next, err := f.NewStyle(st)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, ref, ref, next)
}
