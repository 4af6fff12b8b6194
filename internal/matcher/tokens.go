package matcher

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeText lowercases, strips punctuation and collapses whitespace.
// Queries and field values are always compared in this form.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

func tokenize(s string) []string {
	return strings.Fields(NormalizeText(s))
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}

// tokenSimilarity returns |intersection| / min(|a|,|b|).
func tokenSimilarity(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	common := 0
	for t := range sa {
		if sb[t] {
			common++
		}
	}
	minLen := len(sa)
	if len(sb) < minLen {
		minLen = len(sb)
	}
	return float64(common) / float64(minLen)
}

// tokenOverlap returns |intersection| / max(|a|,|b|), a stricter measure used
// for whole-query brand matching so that a long specific query does not
// collapse into a brand prompt.
func tokenOverlap(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	common := 0
	for t := range sa {
		if sb[t] {
			common++
		}
	}
	maxLen := len(sa)
	if len(sb) > maxLen {
		maxLen = len(sb)
	}
	return float64(common) / float64(maxLen)
}

// Similarity is the token-set similarity used for query-to-needle comparison
// outside this package (customer lookup, learned-correction reuse).
func Similarity(a, b string) float64 {
	return tokenSimilarity(a, b)
}

// containmentScore scores substring containment either way, proportional to
// the length ratio but never below the 0.4 floor.
func containmentScore(query, field string) float64 {
	q, f := NormalizeText(query), NormalizeText(field)
	if q == "" || f == "" {
		return 0
	}
	if !strings.Contains(f, q) && !strings.Contains(q, f) {
		return 0
	}
	shorter, longer := len(q), len(f)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	ratio := float64(shorter) / float64(longer)
	if ratio < 0.4 {
		return 0.4
	}
	return ratio
}
