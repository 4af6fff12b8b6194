package voice

import (
	"context"
	"log"
	"sort"
	"strings"

	"billvox/internal/domain"
	"billvox/internal/intent"
	"billvox/internal/matcher"
)

// resolveCustomer walks the lookup precedence: phone, then email, then unique
// name, then fuzzy needle. When nothing matches, a draft customer is staged
// from whatever was spoken; the bare word "customer" stages a blank Walk-in
// draft. Drafts are persisted only at finalize.
func (s *Session) resolveCustomer(ctx context.Context, e intent.Entities, raw string) *RouteResult {
	if s.customers == nil {
		return s.stageDraft(e, raw)
	}

	if phone := normalizePhone(e.CustomerPhone); phone != "" {
		c, err := s.customers.FindByPhone(ctx, s.BusinessID, phone)
		if err != nil && err != domain.ErrNotFound {
			log.Printf("voice.Session: customer phone lookup: %v", err)
		}
		if c != nil {
			s.SetCustomer(c)
			return &RouteResult{Intent: intent.SetCustomer, Customer: c}
		}
	}

	if email := strings.ToLower(strings.TrimSpace(e.CustomerEmail)); email != "" {
		c, err := s.customers.FindByEmail(ctx, s.BusinessID, email)
		if err != nil && err != domain.ErrNotFound {
			log.Printf("voice.Session: customer email lookup: %v", err)
		}
		if c != nil {
			s.SetCustomer(c)
			return &RouteResult{Intent: intent.SetCustomer, Customer: c}
		}
	}

	name := strings.TrimSpace(e.CustomerName)
	if name != "" {
		byName, err := s.customers.FindByName(ctx, s.BusinessID, name)
		if err != nil && err != domain.ErrNotFound {
			log.Printf("voice.Session: customer name lookup: %v", err)
		}
		if len(byName) == 1 {
			c := byName[0]
			s.SetCustomer(&c)
			return &RouteResult{Intent: intent.SetCustomer, Customer: &c}
		}

		if res := s.fuzzyCustomer(ctx, name); res != nil {
			return res
		}
	}

	return s.stageDraft(e, raw)
}

// fuzzyCustomer scores the spoken name against each customer's search needle.
// A lone candidate above the auto threshold is accepted outright; anything
// above the prompt threshold becomes a pick list.
func (s *Session) fuzzyCustomer(ctx context.Context, name string) *RouteResult {
	all, _, err := s.customers.ListByBusiness(ctx, s.BusinessID, 0, customerScanLimit)
	if err != nil {
		log.Printf("voice.Session: customer scan: %v", err)
		return nil
	}

	type scored struct {
		c     domain.Customer
		score float64
	}
	var candidates []scored
	for _, c := range all {
		needle := c.SearchNeedle
		if needle == "" {
			needle = c.Name
		}
		sc := matcher.Similarity(name, needle)
		if sc > customerPromptScore {
			candidates = append(candidates, scored{c: c, score: sc})
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(candidates) == 1 && candidates[0].score >= customerAutoScore {
		c := candidates[0].c
		s.SetCustomer(&c)
		return &RouteResult{Intent: intent.SetCustomer, Customer: &c}
	}

	prompt := make([]domain.Customer, 0, len(candidates))
	for _, cand := range candidates {
		prompt = append(prompt, cand.c)
	}
	s.mu.Lock()
	s.pendingCustomers = prompt
	s.state = StateDisambiguating
	s.mu.Unlock()
	return &RouteResult{Intent: intent.SetCustomer, CustomerPrompt: prompt, Pending: true}
}

// stageDraft stages an unsaved customer from the spoken fields.
func (s *Session) stageDraft(e intent.Entities, raw string) *RouteResult {
	name := strings.TrimSpace(e.CustomerName)
	bare := matcher.NormalizeText(raw) == "customer"
	if name == "" && bare {
		name = "Walk-in"
	}
	if name == "" && e.CustomerPhone == "" && e.CustomerEmail == "" {
		return &RouteResult{Intent: intent.SetCustomer, Notice: "no match found"}
	}

	draft := &domain.Customer{
		BusinessID: s.BusinessID,
		Name:       name,
		Phone:      normalizePhone(e.CustomerPhone),
		Email:      strings.ToLower(strings.TrimSpace(e.CustomerEmail)),
		IsDraft:    true,
	}
	s.SetCustomer(draft)
	return &RouteResult{Intent: intent.SetCustomer, Customer: draft}
}

// PickCustomer resolves a pending customer prompt by 1-based index; index 0
// selects the first entry.
func (s *Session) PickCustomer(index int) (*RouteResult, error) {
	s.mu.Lock()
	if len(s.pendingCustomers) == 0 {
		s.mu.Unlock()
		return nil, domain.ErrNoPendingSuggestions
	}
	if index <= 0 {
		index = 1
	}
	if index > len(s.pendingCustomers) {
		s.mu.Unlock()
		return nil, domain.ErrNoPendingSuggestions
	}
	c := s.pendingCustomers[index-1]
	s.clearPendingLocked()
	s.state = StateIdle
	s.mu.Unlock()

	s.SetCustomer(&c)
	return &RouteResult{Intent: intent.SetCustomer, Customer: &c}, nil
}

// normalizePhone strips non-digits and keeps the last ten, the comparison key
// for Indian mobile numbers regardless of the +91/0 prefix.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
