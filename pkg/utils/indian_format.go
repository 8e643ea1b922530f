package utils

import (
	"fmt"
	"math"
	"strings"
)

// FormatIndian formats a number with Indian digit grouping (last 3 digits,
// then groups of 2) and up to two decimals, e.g. 7500000 -> "75,00,000".
func FormatIndian(n float64) string {
	negative := n < 0
	n = math.Abs(n)

	intPart := int64(n)
	frac := n - float64(intPart)

	s := groupIndian(intPart)
	if frac > 0.005 {
		dec := fmt.Sprintf("%.2f", frac)
		s += strings.TrimRight(dec[1:], "0")
	}
	if negative {
		return "-" + s
	}
	return s
}

// FormatScore formats a score in [0,1] or a polarity in [-1,1] to three places.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// groupIndian formats an integer with Indian grouping (last 3, then 2s).
func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	result := s[len(s)-3:]
	remaining := s[:len(s)-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	return remaining + "," + result
}
