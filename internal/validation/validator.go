package validation

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate *validator.Validate
	richText *bluemonday.Policy
	plain    *bluemonday.Policy
)

func init() {
	validate = validator.New()
	// editor output keeps its formatting; scripts, handlers and frames are removed
	richText = bluemonday.UGCPolicy()
	plain = bluemonday.StrictPolicy()

	validate.RegisterValidation("doc_title", validateTitle)
}

// Validate performs validation on a struct
func Validate(v any) error {
	return validate.Struct(v)
}

// SanitizeHTML strips active content from editor HTML before it is rendered.
func SanitizeHTML(input string) string {
	return richText.Sanitize(input)
}

// StripTags removes all markup and returns the unescaped text.
func StripTags(input string) string {
	return html.UnescapeString(plain.Sanitize(input))
}

// SanitizeString removes null bytes and control characters and trims the result.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.TrimSpace(input)

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func validateTitle(fl validator.FieldLevel) bool {
	title := fl.Field().String()
	if utf8.RuneCountInString(title) > 255 {
		return false
	}
	return title == SanitizeString(title)
}
