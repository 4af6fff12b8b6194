package matcher

import "strings"

// mishearings maps common speech-transcript renderings to the catalog
// spelling. Keys and values are normalized text; multi-word keys cover the
// split-word transcriptions recognizers tend to produce for brand names.
var mishearings = map[string]string{
	"coal gate":   "colgate",
	"call gate":   "colgate",
	"kolgate":     "colgate",
	"detol":       "dettol",
	"dettal":      "dettol",
	"surf excel":  "surfexcel",
	"surph excel": "surfexcel",
	"parley":      "parle",
	"parle g":     "parleg",
	"parley g":    "parleg",
	"britania":    "britannia",
	"magi":        "maggi",
	"maggie":      "maggi",
	"amool":       "amul",
	"life boy":    "lifebuoy",
	"lifeboy":     "lifebuoy",
	"pepsodant":   "pepsodent",
	"sun silk":    "sunsilk",
	"horlics":     "horlicks",
	"bornvita":    "bournvita",
	"harpick":     "harpic",
	"close up":    "closeup",
}

// applyMishearings rewrites known transcript renderings inside a normalized
// string. Longer keys are not needed first because replacements operate on
// the full normalized phrase and then per-token.
func applyMishearings(s string) string {
	s = NormalizeText(s)
	if canonical, ok := mishearings[s]; ok {
		return canonical
	}
	for heard, canonical := range mishearings {
		if strings.Contains(" "+s+" ", " "+heard+" ") {
			s = strings.ReplaceAll(" "+s+" ", " "+heard+" ", " "+canonical+" ")
			s = strings.TrimSpace(s)
		}
	}
	return s
}

// phoneticKey collapses a word to a crude sound key: leading letter kept,
// vowels dropped, a handful of Indian-English consonant merges applied, and
// runs of the same letter collapsed.
func phoneticKey(word string) string {
	w := strings.ToLower(word)
	replacer := strings.NewReplacer(
		"ph", "f",
		"gh", "g",
		"ck", "k",
		"sh", "s",
		"th", "t",
		"z", "s",
		"w", "v",
		"q", "k",
		"x", "ks",
	)
	w = replacer.Replace(w)

	var b strings.Builder
	var prev rune
	for i, c := range w {
		if i > 0 && strings.ContainsRune("aeiou", c) {
			continue
		}
		if c == prev {
			continue
		}
		b.WriteRune(c)
		prev = c
	}
	return b.String()
}

// phoneticEqual reports whether two normalized strings sound alike: a direct
// mishearing rewrite collapses them, or their per-word sound keys agree.
func phoneticEqual(a, b string) bool {
	na, nb := applyMishearings(a), applyMishearings(b)
	if na == nb && na != "" {
		return true
	}

	ta, tb := tokenize(na), tokenize(nb)
	if len(ta) == 0 || len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if phoneticKey(ta[i]) != phoneticKey(tb[i]) {
			return false
		}
	}
	return true
}
