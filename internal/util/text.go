package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeCell applies NFC so visually identical cell text compares equal.
// Surrounding whitespace is kept; callers decide what to trim.
func NormalizeCell(input string) string {
	return norm.NFC.String(input)
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// NormalizeKey is the form used for case-insensitive lookups.
func NormalizeKey(input string) string {
	return strings.ToLower(NormalizeSpaces(norm.NFKC.String(input)))
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(NormalizeKey(haystack), NormalizeKey(needle))
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
