package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EmptyRichText stands in for rich-text content that is missing or blank.
const EmptyRichText = "<p></p>"

// DecodeRichText returns the HTML held in content_data, which is either a JSON string
// or an object with a "data" field.
func DecodeRichText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var html string
	switch {
	case len(raw) == 0:
	case raw[0] == '"':
		_ = json.Unmarshal(raw, &html)
	case raw[0] == '{':
		var w struct {
			Data json.RawMessage `json:"data"`
		}
		if json.Unmarshal(raw, &w) == nil {
			_ = json.Unmarshal(w.Data, &html)
		}
	}
	if strings.TrimSpace(html) == "" {
		return EmptyRichText
	}
	return html
}
