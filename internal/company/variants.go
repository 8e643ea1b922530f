package company

import (
	"strings"
	"unicode"
)

// legalSuffixes are trailing words removed from a company name before
// deriving the cleaned, acronym, and partial variants.
var legalSuffixes = map[string]bool{
	"limited": true, "ltd": true, "corporation": true, "corp": true,
	"company": true, "co": true, "inc": true, "llc": true,
	"private": true, "pvt": true, "public": true, "plc": true,
}

// CleanName lower-cases name, collapses punctuation to single spaces and
// strips trailing legal suffixes. The first word is always kept.
func CleanName(name string) string {
	words := strings.Fields(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, name))

	for len(words) > 1 && legalSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// Variants returns the alternate forms of a company name used for
// matching, in checking order: the name itself, its cleaned form, the
// acronym of the cleaned form, and its first three words. Duplicates
// (ignoring case) are dropped.
func Variants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	out := []string{name}
	seen := map[string]bool{strings.ToLower(name): true}
	add := func(v string) {
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}

	cleaned := CleanName(name)
	add(cleaned)

	words := strings.Fields(cleaned)
	if len(words) >= 2 {
		var acronym strings.Builder
		for _, w := range words {
			r := []rune(w)
			acronym.WriteRune(unicode.ToUpper(r[0]))
		}
		if acronym.Len() > 1 {
			add(acronym.String())
		}
	}

	if len(words) > 0 {
		add(strings.Join(words[:min(3, len(words))], " "))
	}

	return out
}
