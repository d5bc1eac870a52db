// Package tag provides tag normalization and overlap checks used by
// intent filtering and passage enrichment.
package tag

import (
	"regexp"
	"strings"
)

var (
	normalizer = strings.NewReplacer(" ", "_", "-", "_")

	// Divisional-chart shorthand like "d-9" or "d_9" collapses to "d9";
	// multi-word tags ("7th_lord") keep their separators.
	letterDigit = regexp.MustCompile(`^([a-z])_(\d+)$`)
)

// Normalize lowercases a tag and replaces spaces and hyphens with
// underscores, so "D9", "d9" and "d-9" all normalize to "d9" while
// "7th Lord" becomes "7th_lord".
func Normalize(t string) string {
	n := normalizer.Replace(strings.ToLower(strings.TrimSpace(t)))
	return letterDigit.ReplaceAllString(n, "$1$2")
}

// NormalizeAll normalizes a list of tags, dropping empties and duplicates
// while preserving order.
func NormalizeAll(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := Normalize(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Set is a normalized tag set.
type Set map[string]struct{}

// NewSet builds a Set from raw tags, normalizing each.
func NewSet(tags []string) Set {
	s := make(Set, len(tags))
	for _, t := range tags {
		if n := Normalize(t); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether the set contains the normalized form of t.
func (s Set) Has(t string) bool {
	_, ok := s[Normalize(t)]
	return ok
}

// Overlaps reports whether any of the given tags is in the set.
func (s Set) Overlaps(tags []string) bool {
	for _, t := range tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}
