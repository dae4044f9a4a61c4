// Package style converts cell formatting to and from the declaration strings stored
// with canonical content, e.g. "font-weight: bold;color: #FF0000".
package style

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Attrs is the subset of cell formatting the codec preserves. Colours hold
// "RRGGBB" or "FFRRGGBB"; Parse always fills them in the ARGB form.
type Attrs struct {
	Bold       bool
	Italic     bool
	Underline  bool
	Color      string
	Background string
	Horizontal string // left|center|right|justify|...
	Vertical   string // top|center|bottom (workbook vocabulary)
}

// IsZero reports whether no attribute is set.
func (a Attrs) IsZero() bool { return a == Attrs{} }

var (
	reBold       = regexp.MustCompile(`(?i)font-weight:\s*bold`)
	reItalic     = regexp.MustCompile(`(?i)font-style:\s*italic`)
	reUnderline  = regexp.MustCompile(`(?i)text-decoration:\s*underline`)
	reBackground = regexp.MustCompile(`(?i)background-color:\s*(#[0-9a-fA-F]+)`)
	reColor      = regexp.MustCompile(`(?i)(?:^|;)\s*color:\s*(#[0-9a-fA-F]+)`)
	reTextAlign  = regexp.MustCompile(`(?i)(?:^|;)\s*text-align:\s*([a-zA-Z-]+)`)
	reVertAlign  = regexp.MustCompile(`(?i)(?:^|;)\s*vertical-align:\s*([a-zA-Z-]+)`)
)

var (
	horizontals = map[string]string{
		"left": "left", "center": "center", "right": "right", "justify": "justify",
		"fill": "fill", "general": "general", "distributed": "distributed",
		"centercontinuous": "centerContinuous",
	}
	verticals = map[string]string{
		"top": "top", "middle": "center", "center": "center", "bottom": "bottom",
		"justify": "justify", "distributed": "distributed",
	}
)

// Encode renders attrs as a declaration string. The empty string means "no style".
func Encode(a Attrs) string {
	decl := make([]string, 0, 7)
	if a.Bold {
		decl = append(decl, "font-weight: bold")
	}
	if a.Italic {
		decl = append(decl, "font-style: italic")
	}
	if a.Underline {
		decl = append(decl, "text-decoration: underline")
	}
	if a.Color != "" {
		decl = append(decl, "color: "+cssColor(a.Color))
	}
	if a.Background != "" {
		decl = append(decl, "background-color: "+cssColor(a.Background))
	}
	if a.Horizontal != "" {
		decl = append(decl, "text-align: "+a.Horizontal)
	}
	if a.Vertical != "" {
		v := a.Vertical
		if v == "center" {
			v = "middle"
		}
		decl = append(decl, "vertical-align: "+v)
	}
	return strings.Join(decl, ";")
}

// Parse reads a declaration string back into attrs. It never gives up: properties it
// cannot use are left unset and reported in the returned error, which callers log.
// Unknown properties are ignored without error.
func Parse(decl string) (Attrs, error) {
	var (
		a    Attrs
		errs []error
	)
	a.Bold = reBold.MatchString(decl)
	a.Italic = reItalic.MatchString(decl)
	a.Underline = reUnderline.MatchString(decl)

	if m := reBackground.FindStringSubmatch(decl); m != nil {
		if argb, err := HexToArgb(m[1]); err == nil {
			a.Background = argb
		} else {
			errs = append(errs, fmt.Errorf("background-color: %w", err))
		}
	}
	if m := reColor.FindStringSubmatch(decl); m != nil {
		if argb, err := HexToArgb(m[1]); err == nil {
			a.Color = argb
		} else {
			errs = append(errs, fmt.Errorf("color: %w", err))
		}
	}
	if m := reTextAlign.FindStringSubmatch(decl); m != nil {
		if h, ok := horizontals[strings.ToLower(m[1])]; ok {
			a.Horizontal = h
		} else {
			errs = append(errs, fmt.Errorf("text-align: unsupported value %q", m[1]))
		}
	}
	if m := reVertAlign.FindStringSubmatch(decl); m != nil {
		if v, ok := verticals[strings.ToLower(m[1])]; ok {
			a.Vertical = v
		} else {
			errs = append(errs, fmt.Errorf("vertical-align: unsupported value %q", m[1]))
		}
	}
	return a, errors.Join(errs...)
}

func cssColor(c string) string {
	return ArgbToHex(strings.TrimPrefix(c, "#"))
}
