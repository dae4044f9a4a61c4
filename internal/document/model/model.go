package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceSheet    SourceType = "sheet"
	SourceRichText SourceType = "rich_text"
)

const (
	PixelsPerWidthUnit = 8   // workbook character width -> stored pixel hint
	DefaultColumnWidth = 100 // pixel hint for columns without a declared width
)

type Document struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	SourceType  SourceType      `json:"doc_source_type"`
	ContentData json.RawMessage `json:"content_data"` // Content for sheets, HTML or {data} for rich text
	CreatedAt   time.Time       `json:"created_at"`
}
