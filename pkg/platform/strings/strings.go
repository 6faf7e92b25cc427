// Package strings provides string helpers shared by list filters and slug generation.
package strings

import (
	"strings"
	"unicode"
)

// DedupeAndTrimLower removes empty values and case-insensitive duplicates,
// trimming and lowercasing each element. Order of first occurrence is preserved.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  Policy ", "votes", "policy"})
//	// Returns: []string{"policy", "votes"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}

// SplitList splits a comma-separated query value and normalizes it with
// DedupeAndTrimLower. Repeated query parameters can be passed as separate values.
func SplitList(values ...string) []string {
	var parts []string
	for _, v := range values {
		parts = append(parts, strings.Split(v, ",")...)
	}
	return DedupeAndTrimLower(parts)
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// An empty needle matches everything.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// IntersectsFold reports whether have and want share at least one element,
// ignoring case and surrounding whitespace. An empty want matches everything.
func IntersectsFold(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[strings.ToLower(strings.TrimSpace(w))]; ok {
			return true
		}
	}
	return false
}

// Slugify lowercases s and collapses every run of non-alphanumeric runes into a
// single hyphen, trimming hyphens at both ends.
//
// Example:
//
//	Slugify("Clean Water for Riverside!")
//	// Returns: "clean-water-for-riverside"
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
