package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sourabhkushwaha427/dms-server/internal/cellref"
	"github.com/sourabhkushwaha427/dms-server/internal/document/model"
	"github.com/sourabhkushwaha427/dms-server/internal/fileio"
	"github.com/sourabhkushwaha427/dms-server/internal/style"
	"github.com/sourabhkushwaha427/dms-server/internal/validation"
)

const defaultTitle = "document"

// Importer turns the first sheet of a workbook into sheet content. Only an
// unreadable file fails an import; bad merges or styles cost just that entry.
type Importer struct {
	logger zerolog.Logger
}

func NewImporter(logger zerolog.Logger) *Importer {
	return &Importer{logger: logger}
}

// BuildContent walks sh into grid, styles, merges and column widths.
func (im *Importer) BuildContent(sh fileio.Sheet) model.Content {
	c := model.NewContent()

	for _, col := range sh.Columns() {
		px := model.DefaultColumnWidth
		if col.Declared && col.Width > 0 {
			px = int(math.Round(col.Width * model.PixelsPerWidthUnit))
		}
		c.Columns = append(c.Columns, px)
	}

	for r, row := range sh.Rows() {
		for len(c.Grid) < r {
			c.Grid = append(c.Grid, []any{})
		}
		values := make([]any, len(row))
		for col, cell := range row {
			values[col] = displayValue(cell)
			if decl := style.Encode(cell.Style); decl != "" {
				c.Styles[cellref.CellRef(r, col)] = decl
			}
		}
		c.Grid = append(c.Grid, values)
	}

	ranges, err := sh.Merges()
	if err != nil {
		im.logger.Warn().Err(err).Msg("merge list unreadable, importing without merges")
		ranges = nil
	}
	for _, raw := range ranges {
		rng, err := cellref.DecodeRange(raw)
		if err != nil {
			im.logger.Warn().Err(err).Str("range", raw).Msg("skip malformed merge")
			continue
		}
		if colspan, rowspan := rng.Spans(); colspan > 1 || rowspan > 1 {
			c.Merges[rng.Start.String()] = [2]int{colspan, rowspan}
		}
	}
	return c
}

// displayValue prefers a formula's cached result, then rich-text runs, then the raw value.
func displayValue(c fileio.Cell) any {
	switch {
	case c.Formula != "":
		if c.Result == nil {
			return ""
		}
		return c.Result
	case len(c.Runs) > 0:
		return strings.Join(c.Runs, "")
	case c.Value == nil:
		return ""
	default:
		return c.Value
	}
}

// Import builds a sheet document from sh.
func (im *Importer) Import(title string, sh fileio.Sheet) (model.Document, error) {
	raw, err := json.Marshal(im.BuildContent(sh))
	if err != nil {
		return model.Document{}, fmt.Errorf("encode content: %w", err)
	}
	return model.Document{
		ID:          uuid.New(),
		Title:       docTitle(title),
		SourceType:  model.SourceSheet,
		ContentData: raw,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ImportFile opens the workbook at path. filename is the name the client gave the
// file and selects the reader; with an empty title the document is named after it.
func (im *Importer) ImportFile(path, filename, title string) (model.Document, error) {
	wb, err := fileio.Open(path, filename)
	if err != nil {
		if errors.Is(err, fileio.ErrUnsupportedFile) {
			return model.Document{}, err
		}
		return model.Document{}, fmt.Errorf("%w: %w", ErrUnreadableWorkbook, err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			im.logger.Warn().Err(err).Str("file", filename).Msg("close workbook")
		}
	}()

	if strings.TrimSpace(title) == "" {
		base := filepath.Base(filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return im.Import(title, wb)
}

// ImportUpload stages r in stagingDir and imports it. The staging file is removed
// whatever the outcome; failing to remove it is only logged.
func (im *Importer) ImportUpload(r io.Reader, filename, title, stagingDir string) (model.Document, error) {
	if !fileio.Supported(filename) {
		return model.Document{}, fmt.Errorf("%w: %s", fileio.ErrUnsupportedFile, filepath.Base(filename))
	}
	tmp, err := os.CreateTemp(stagingDir, "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return model.Document{}, fmt.Errorf("stage upload: %w", err)
	}
	staged := tmp.Name()
	defer func() {
		if err := os.Remove(staged); err != nil && !errors.Is(err, fs.ErrNotExist) {
			im.logger.Warn().Err(err).Str("path", staged).Msg("remove staging file")
		}
	}()

	_, err = io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("stage upload: %w", err)
	}
	return im.ImportFile(staged, filename, title)
}

func docTitle(title string) string {
	title = validation.SanitizeString(validation.StripTags(title))
	if title == "" {
		return defaultTitle
	}
	return title
}
