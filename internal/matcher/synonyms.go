package matcher

// synonyms maps a spoken token to catalog tokens that mean the same thing.
// Lookup is one-directional; both directions are listed where they occur in
// practice.
var synonyms = map[string][]string{
	"paste":      {"toothpaste"},
	"toothpaste": {"paste"},
	"brush":      {"toothbrush"},
	"soap":       {"bar", "bathing"},
	"washing":    {"detergent", "laundry"},
	"detergent":  {"washing", "surf"},
	"atta":       {"flour", "wheat"},
	"flour":      {"atta", "maida"},
	"dal":        {"lentil", "pulses"},
	"lentil":     {"dal"},
	"oil":        {"tel"},
	"rice":       {"chawal"},
	"sugar":      {"cheeni"},
	"salt":       {"namak"},
	"milk":       {"doodh"},
	"biscuit":    {"cookies", "biscuits"},
	"cookies":    {"biscuit"},
	"noodles":    {"maggi"},
	"chips":      {"wafers"},
	"cold":       {"drink", "soda"},
	"sanitizer":  {"handwash"},
	"phenyl":     {"cleaner", "floor"},
}

// synonymHit reports whether any query token has a synonym among the field's
// tokens.
func synonymHit(query, field string) bool {
	fieldSet := tokenSet(field)
	for _, qt := range tokenize(query) {
		for _, syn := range synonyms[qt] {
			if fieldSet[syn] {
				return true
			}
		}
	}
	return false
}
