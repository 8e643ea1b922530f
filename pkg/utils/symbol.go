// Package utils provides small helpers shared across nsenews: NSE symbol
// normalization, IST clock helpers, and Indian number formatting.
package utils

import "strings"

// NormalizeSymbol converts user or CSV input to the canonical registry form:
// trimmed, upper-cased, with any "$" prefix and Yahoo-style ".NS"/".BO"
// exchange suffix removed.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, ".BO")
	return s
}

// NormalizeSymbols normalizes each symbol and drops empty results and
// duplicates, keeping first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		n := NormalizeSymbol(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
