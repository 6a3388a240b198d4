package geocoding

import (
	"regexp"
	"strings"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Normalize lowercases an address, drops venue qualifiers such as
// "(uzhavar sandhai)" and collapses whitespace
func Normalize(address string) string {
	normalized := strings.ToLower(strings.TrimSpace(address))
	normalized = parenthetical.ReplaceAllString(normalized, "")
	normalized = whitespace.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// Strategies returns the query rewrites tried for a normalized address, in
// order and without duplicates
func Strategies(normalized string) []string {
	candidates := []string{
		normalized,
		strings.ReplaceAll(normalized, "uttrakhand", "uttarakhand"),
		strings.ReplaceAll(normalized, "odisha", "orissa"),
		strings.TrimSpace(strings.SplitN(normalized, ",", 2)[0]),
		whitespace.ReplaceAllString(normalized, ""),
		strings.ReplaceAll(normalized, "-", " "),
	}

	if strings.Contains(normalized, ",") {
		parts := strings.Split(normalized, ",")
		candidates = append(candidates, strings.TrimSpace(parts[len(parts)-1]))
	}

	seen := make(map[string]bool, len(candidates))
	unique := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	return unique
}
