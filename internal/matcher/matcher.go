package matcher

import (
	"sort"

	"billvox/internal/domain"
)

// Field weights for the blended score. Fields the product does not carry are
// excluded from the denominator rather than penalized.
const (
	weightName        = 0.40
	weightBrand       = 0.25
	weightCategory    = 0.15
	weightSKU         = 0.15
	weightDescription = 0.05
)

// brandPromptThreshold preempts ranked matching with a brand-selection prompt.
const brandPromptThreshold = 0.6

// learnedSimilarityThreshold gates reuse of a logged correction.
const learnedSimilarityThreshold = 0.6

// learnedConfidence is the fixed confidence assigned to learned matches.
const learnedConfidence = 95

// Options bounds the result set.
type Options struct {
	MaxResults int
	MinScore   float64
}

// Match is one ranked candidate.
type Match struct {
	Product       domain.InventoryProduct `json:"product"`
	Score         float64                 `json:"score"`
	Confidence    int                     `json:"confidence"`
	MatchedFields []string                `json:"matched_fields"`
	Learned       bool                    `json:"learned,omitempty"`
}

// BrandPrompt asks the user to pick among every product of an ambiguous brand.
type BrandPrompt struct {
	Brand    string                    `json:"brand"`
	Products []domain.InventoryProduct `json:"products"`
}

// Result is either a ranked match list or a brand prompt, never both.
type Result struct {
	Matches     []Match      `json:"matches"`
	BrandPrompt *BrandPrompt `json:"brand_prompt,omitempty"`
}

// FindMatchingProducts ranks inventory products against a free-text query.
// corrections is a snapshot of the learning log; the function itself is pure
// over its inputs.
func FindMatchingProducts(query string, inventory []domain.InventoryProduct, corrections []domain.MatchCorrection, opts Options) Result {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.MinScore <= 0 {
		opts.MinScore = 0.3
	}

	query = NormalizeText(query)
	if query == "" {
		return Result{}
	}

	if prompt := brandPrompt(query, inventory); prompt != nil {
		return Result{BrandPrompt: prompt}
	}

	matches := rankProducts(query, inventory, opts)
	matches = mergeLearned(query, corrections, inventory, matches)

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return Result{Matches: matches}
}

// brandPrompt returns a brand-selection prompt when the query as a whole
// strongly matches a brand carrying more than one product.
func brandPrompt(query string, inventory []domain.InventoryProduct) *BrandPrompt {
	byBrand := make(map[string][]domain.InventoryProduct)
	for _, p := range inventory {
		if p.Brand == "" {
			continue
		}
		key := NormalizeText(p.Brand)
		byBrand[key] = append(byBrand[key], p)
	}

	bestBrand := ""
	bestScore := 0.0
	for brand := range byBrand {
		if len(byBrand[brand]) < 2 {
			continue
		}
		score := brandScore(query, brand)
		if score > bestScore {
			bestScore = score
			bestBrand = brand
		}
	}

	if bestScore > brandPromptThreshold && bestBrand != "" {
		products := byBrand[bestBrand]
		return &BrandPrompt{Brand: products[0].Brand, Products: products}
	}
	return nil
}

// brandScore measures the whole query against a brand name. The overlap
// denominator is max(token counts) so a long specific query keeps flowing to
// ranked matching instead of the prompt.
func brandScore(query, brand string) float64 {
	if query == brand {
		return 1.0
	}
	if phoneticEqual(query, brand) {
		return 0.7
	}
	return tokenOverlap(query, brand)
}

// fieldScore scores one field: the max of exact, phonetic, synonym,
// token-set similarity and substring containment.
func fieldScore(query, field string) float64 {
	field = NormalizeText(field)
	if field == "" {
		return 0
	}

	best := 0.0
	if query == field {
		best = 1.0
	}
	if best < 0.7 && phoneticEqual(query, field) {
		best = 0.7
	}
	if best < 0.6 && synonymHit(query, field) {
		best = 0.6
	}
	if s := tokenSimilarity(query, field); s > best {
		best = s
	}
	if s := containmentScore(query, field); s > best {
		best = s
	}
	return best
}

func rankProducts(query string, inventory []domain.InventoryProduct, opts Options) []Match {
	var matches []Match
	for _, p := range inventory {
		score, fields := scoreProduct(query, &p)
		if score < opts.MinScore {
			continue
		}
		matches = append(matches, Match{
			Product:       p,
			Score:         score,
			Confidence:    int(score*100 + 0.5),
			MatchedFields: fields,
		})
	}
	return matches
}

func scoreProduct(query string, p *domain.InventoryProduct) (float64, []string) {
	type scored struct {
		name   string
		weight float64
		value  string
	}
	fields := []scored{
		{"name", weightName, p.Name},
		{"brand", weightBrand, p.Brand},
		{"category", weightCategory, p.Category},
		{"sku", weightSKU, p.SKU},
		{"description", weightDescription, p.Description},
	}

	var weightedSum, weightTotal float64
	var matched []string
	for _, f := range fields {
		s := fieldScore(query, f.value)
		if s <= 0 {
			continue
		}
		weightedSum += s * f.weight
		weightTotal += f.weight
		matched = append(matched, f.name)
	}
	if weightTotal == 0 {
		return 0, nil
	}
	return weightedSum / weightTotal, matched
}

// mergeLearned surfaces logged corrections similar to the query at fixed
// confidence 95, de-duplicated against fuzzy results preferring the higher
// confidence entry.
func mergeLearned(query string, corrections []domain.MatchCorrection, inventory []domain.InventoryProduct, matches []Match) []Match {
	if len(corrections) == 0 {
		return matches
	}

	byID := make(map[string]*domain.InventoryProduct, len(inventory))
	for i := range inventory {
		byID[inventory[i].ID.String()] = &inventory[i]
	}

	seen := make(map[string]int, len(matches)) // product ID -> index in matches
	for i, m := range matches {
		seen[m.Product.ID.String()] = i
	}

	for _, c := range corrections {
		if tokenSimilarity(query, c.Query) <= learnedSimilarityThreshold {
			continue
		}
		p, ok := byID[c.ProductID.String()]
		if !ok {
			continue
		}
		learned := Match{
			Product:       *p,
			Score:         float64(learnedConfidence) / 100,
			Confidence:    learnedConfidence,
			MatchedFields: []string{"learned"},
			Learned:       true,
		}
		if idx, dup := seen[c.ProductID.String()]; dup {
			if matches[idx].Confidence < learnedConfidence {
				matches[idx] = learned
			}
			continue
		}
		seen[c.ProductID.String()] = len(matches)
		matches = append(matches, learned)
	}
	return matches
}
