// Package filters selects and cross-checks symbol table entries: scope
// patterns restrict what a dump shows, and near-miss detection flags texts
// that are probably typos of each other.
package filters

import (
	"path"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/RowanDark/symtab/symbol"
)

// MatchesScope reports whether text is selected by any of patterns. Patterns
// containing glob metacharacters are matched with path.Match, patterns
// starting with "." match as a suffix, and anything else matches as a
// substring. Matching ignores case. An empty pattern list selects everything.
func MatchesScope(text string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	candidate := strings.ToLower(strings.TrimSpace(text))
	if candidate == "" {
		return false
	}

	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}

		if strings.ContainsAny(pattern, "*?[]") {
			if ok, err := path.Match(pattern, candidate); err == nil && ok {
				return true
			}
			continue
		}

		if strings.HasPrefix(pattern, ".") {
			if strings.HasSuffix(candidate, pattern) {
				return true
			}
			continue
		}

		if strings.Contains(candidate, pattern) {
			return true
		}
	}

	return false
}

// FilterEntries returns the entries selected by patterns, preserving order.
// The null entry is never selected.
func FilterEntries(entries []symbol.Entry, patterns []string) []symbol.Entry {
	filtered := make([]symbol.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID == symbol.NullID {
			continue
		}
		if MatchesScope(e.Text, patterns) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// NearMiss is a pair of distinct texts within a small edit distance.
type NearMiss struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

// NearMisses returns every pair of texts whose Levenshtein distance is at
// most maxDistance. Pairs that differ only in a trailing number, such as
// voice1 and voice2, are numbered families rather than typos and are
// skipped. Results are ordered by distance, then text.
func NearMisses(texts []string, maxDistance int) []NearMiss {
	if maxDistance <= 0 || len(texts) < 2 {
		return nil
	}

	sorted := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, text := range texts {
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		sorted = append(sorted, text)
	}
	sort.Strings(sorted)

	var misses []NearMiss
	for i, a := range sorted {
		for _, b := range sorted[i+1:] {
			if abs(len(a)-len(b)) > maxDistance {
				continue
			}
			if stem(a) == stem(b) && stem(a) != a && stem(b) != b {
				continue
			}
			if d := levenshtein.ComputeDistance(a, b); d <= maxDistance {
				misses = append(misses, NearMiss{A: a, B: b, Distance: d})
			}
		}
	}

	sort.SliceStable(misses, func(i, j int) bool {
		if misses[i].Distance != misses[j].Distance {
			return misses[i].Distance < misses[j].Distance
		}
		if misses[i].A != misses[j].A {
			return misses[i].A < misses[j].A
		}
		return misses[i].B < misses[j].B
	})
	return misses
}

// stem strips any trailing decimal digits.
func stem(text string) string {
	return strings.TrimRight(text, "0123456789")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
