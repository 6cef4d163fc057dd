package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var unsignedDecimal = regexp.MustCompile(`^\d*\.?\d*$`)

// IsUnsignedDecimal reports whether s contains only digits and at most one
// decimal point. The empty string matches.
func IsUnsignedDecimal(s string) bool {
	return unsignedDecimal.MatchString(s)
}

// ParseNumber parses s the way a browser coerces form text to a number:
// surrounding whitespace is ignored, blank text is zero, 0x/0o/0b prefixes
// are accepted for unsigned integers and "Infinity" is a number. NaN is never
// returned.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if strings.ContainsRune(s, '_') {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(v), true
		}
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "inf") || lower == "nan" || strings.HasPrefix(lower, "0x") {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out-of-range literals still denote a number (±Inf or 0).
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}
