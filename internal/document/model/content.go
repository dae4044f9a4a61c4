package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// Content is the stored form of a spreadsheet document.
type Content struct {
	Grid    [][]any           `json:"grid"`    // rows of string, float64, bool or nil
	Styles  map[string]string `json:"styles"`  // cell label -> declaration string
	Merges  map[string][2]int `json:"merges"`  // top-left label -> [colspan, rowspan]
	Columns []int             `json:"columns"` // width hints in pixels
}

// NewContent returns an empty Content with all collections allocated.
func NewContent() Content {
	return Content{Grid: [][]any{}, Styles: map[string]string{}, Merges: map[string][2]int{}, Columns: []int{}}
}

func (c *Content) normalize() {
	if c.Grid == nil {
		c.Grid = [][]any{}
	}
	if c.Styles == nil {
		c.Styles = map[string]string{}
	}
	if c.Merges == nil {
		c.Merges = map[string][2]int{}
	}
	if c.Columns == nil {
		c.Columns = []int{}
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	c.normalize()
	type plain Content
	return json.Marshal(plain(c))
}

// wire is the permissive object shape: grid aliases, loose merge tuples and
// fractional widths are all accepted.
type wire struct {
	Grid    json.RawMessage            `json:"grid"`
	Cells   json.RawMessage            `json:"cells"`
	Data    json.RawMessage            `json:"data"`
	Styles  map[string]json.RawMessage `json:"styles"`
	Merges  map[string]json.RawMessage `json:"merges"`
	Columns []json.RawMessage          `json:"columns"`
}

// UnmarshalJSON accepts the wrapped object as well as the legacy bare 2-D array.
// Entries it cannot use are dropped rather than failing the whole document.
func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = NewContent()
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		grid, err := decodeGrid(b)
		if err != nil {
			return err
		}
		c.Grid = grid
		return nil
	}

	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	for _, raw := range []json.RawMessage{w.Grid, w.Cells, w.Data} {
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		grid, err := decodeGrid(raw)
		if err != nil {
			return err
		}
		c.Grid = grid
		break
	}
	for label, raw := range w.Styles {
		var decl string
		if json.Unmarshal(raw, &decl) == nil && decl != "" {
			c.Styles[label] = decl
		}
	}
	for label, raw := range w.Merges {
		var span []float64
		if json.Unmarshal(raw, &span) == nil && len(span) == 2 {
			c.Merges[label] = [2]int{int(span[0]), int(span[1])}
		}
	}
	for _, raw := range w.Columns {
		var px float64
		if json.Unmarshal(raw, &px) != nil || px <= 0 {
			px = DefaultColumnWidth
		}
		c.Columns = append(c.Columns, int(math.Round(px)))
	}
	return nil
}

// decodeGrid reads an array of rows. A scalar where a row is expected becomes a
// one-cell row.
func decodeGrid(b []byte) ([][]any, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	grid := make([][]any, 0, len(rows))
	for _, raw := range rows {
		var row []any
		if err := json.Unmarshal(raw, &row); err != nil {
			var v any
			if json.Unmarshal(raw, &v) != nil {
				return nil, err
			}
			row = []any{v}
		}
		if row == nil {
			row = []any{}
		}
		grid = append(grid, row)
	}
	return grid, nil
}

// DecodeContent reads stored content_data. Content stored as a JSON string holding
// JSON is unwrapped once.
func DecodeContent(raw json.RawMessage) (Content, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Content{}, err
		}
		raw = []byte(inner)
		if len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
			return Content{}, errors.New("content_data: string does not hold JSON")
		}
	}
	var c Content
	if err := c.UnmarshalJSON(raw); err != nil {
		return Content{}, err
	}
	return c, nil
}
