package service

import "errors"

var (
	// ErrUnreadableWorkbook means the uploaded file could not be opened as a workbook.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")
	// ErrUnsupportedContentKind is returned for source types other than sheet and rich_text.
	ErrUnsupportedContentKind = errors.New("unsupported content kind")
	// ErrMalformedContent means stored sheet content is not JSON of any accepted shape.
	ErrMalformedContent = errors.New("malformed content")
	// ErrGenerationFailure wraps errors from the workbook or document builders.
	ErrGenerationFailure = errors.New("document generation failed")
)
