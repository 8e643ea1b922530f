package textsignal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/seenimoa/nsenews/pkg/models"
)

// amount is a number with optional thousands separators and decimals.
const amount = `(\d+(?:,\d+)*(?:\.\d+)?)`

// magnitudePatterns capture the numeric coefficient of an amount; values
// are kept as written, crore and lakh are not converted to a base unit.
var magnitudePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)` + amount + `\s*(?:crores?|cr)\b`),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:lakhs?|lacs?)\b`),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:thousands?|k)\b`),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:millions?|mn)\b`),
	regexp.MustCompile(`(?i)` + amount + `\s*(?:billions?|bn)\b`),
	regexp.MustCompile(`₹\s*` + amount),
	regexp.MustCompile(`\$\s*` + amount),
}

var percentPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:%|percent|per cent)`)

// FinancialTerms is the vocabulary counted towards financial density.
var FinancialTerms = []string{
	"revenue", "profit", "loss", "earnings", "ebitda", "dividend",
	"market cap", "valuation", "investment", "funding", "debt",
	"cash flow", "assets", "liabilities", "equity", "roe", "roa",
	"pe ratio", "eps", "book value", "sales", "growth",
}

// FinancialInfo extracts monetary amounts, percentages, and financial
// vocabulary from text.
func FinancialInfo(text string) models.FinancialSignals {
	sig := models.FinancialSignals{
		Numbers:     ExtractNumbers(text),
		Percentages: ExtractPercentages(text),
		Terms:       []string{},
	}

	lower := strings.ToLower(text)
	for _, term := range FinancialTerms {
		if strings.Contains(lower, term) {
			sig.Terms = append(sig.Terms, term)
		}
	}
	sig.Density = density(len(sig.Terms), text)

	return sig
}

// ExtractNumbers returns the coefficients of every magnitude or
// currency-prefixed amount in text, pattern by pattern.
func ExtractNumbers(text string) []float64 {
	numbers := []float64{}
	for _, re := range magnitudePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			numbers = append(numbers, v)
		}
	}
	return numbers
}

// ExtractPercentages returns numbers followed by "%", "percent" or "per cent".
func ExtractPercentages(text string) []float64 {
	out := []float64{}
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
