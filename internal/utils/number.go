package utils

import (
	"strconv"
	"strings"
)

func isGroupSep(r rune) bool {
	switch r {
	case ' ', '\u00A0', '\u202F', '\u2009':
		return true
	}
	return false
}

// ParseNumber types numeric text handed over by text-only sources (CSV, legacy
// XLS): "-3", "0.25", "1 234" and, with decimalComma, "1 234,5". Only text that a
// float64 prints back exactly is converted, so leading zeros ("00501"), a "+" sign,
// exponents, trailing fraction zeros and irregular digit groups stay text.
func ParseNumber(s string, decimalComma bool) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if decimalComma {
		if strings.Contains(s, ".") || strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	} else if strings.Contains(s, ",") {
		return 0, false
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if strings.ContainsFunc(frac, isGroupSep) {
		return 0, false
	}
	if strings.TrimFunc(whole, isGroupSep) != whole {
		return 0, false
	}
	groups := strings.FieldsFunc(whole, isGroupSep)
	for i, g := range groups {
		if (i == 0 && len(g) > 3 && len(groups) > 1) || (i > 0 && len(g) != 3) {
			return 0, false
		}
	}

	canonical := sign + strings.Join(groups, "")
	if hasFrac {
		canonical += "." + frac
	}
	f, err := strconv.ParseFloat(canonical, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != canonical {
		return 0, false
	}
	return f, true
}
