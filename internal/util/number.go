package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsDot   = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$`)
	reIntegralFloat  = regexp.MustCompile(`^(-?\d+)\.0+$`)
)

// ParseNumber reads a loosely formatted number such as "22", "1,5",
// "1 000" or "1.000". It returns nil when the text is not a number.
func ParseNumber(input string) *float64 {
	token := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	if token == "" {
		return nil
	}
	norm := normalizeNumericToken(token)
	parsed, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return nil
	}
	return FloatPtr(parsed)
}

// TrimIntegralFraction turns "123.0" into "123" and leaves anything else
// untouched.
func TrimIntegralFraction(s string) string {
	if m := reIntegralFloat.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if reThousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if reThousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
