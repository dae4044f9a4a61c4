package style

import (
	"fmt"
	"strings"
)

// HexToArgb turns "RRGGBB" (optionally "#"-prefixed, any case) into the opaque
// workbook form "FFRRGGBB".
func HexToArgb(hex string) (string, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 || !isHex(h) {
		return "", fmt.Errorf("style: invalid hex colour %q", hex)
	}
	return "FF" + strings.ToUpper(h), nil
}

// ArgbToHex drops the alpha byte of an 8-digit ARGB value. Any other input is
// returned with a "#" prefix as is.
func ArgbToHex(argb string) string {
	if len(argb) == 8 {
		return "#" + argb[2:]
	}
	return "#" + argb
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
