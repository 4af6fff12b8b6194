package voice

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/intent"
	"billvox/internal/matcher"
	"billvox/internal/port"
	"billvox/internal/pricing"
)

// State is the session's position in the utterance lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateListening      State = "listening"
	StateDisambiguating State = "disambiguating"
)

const (
	strongIdentifierConfidence = 0.96
	autoAddConfidence          = 80
	closeTieGap                = 5
	remoteParseTimeout         = 3 * time.Second
	customerPromptScore        = 0.48
	customerAutoScore          = 0.92
	customerScanLimit          = 500
)

// RouteResult is the observable outcome of routing one utterance: at most one
// of AddedLine, Suggestions, BrandPrompt, CustomerPrompt is populated.
type RouteResult struct {
	Intent         string               `json:"intent"`
	Notice         string               `json:"notice,omitempty"`
	AddedLine      *domain.CartLine     `json:"added_line,omitempty"`
	Suggestions    []matcher.Match      `json:"suggestions,omitempty"`
	BrandPrompt    *matcher.BrandPrompt `json:"brand_prompt,omitempty"`
	CustomerPrompt []domain.Customer    `json:"customer_prompt,omitempty"`
	Customer       *domain.Customer     `json:"customer,omitempty"`
	Pending        bool                 `json:"pending,omitempty"`
}

// Config wires a session's collaborators. Remote is optional; everything else
// is required.
type Config struct {
	BusinessID  uuid.UUID
	UserID      uuid.UUID
	Inventory   []domain.InventoryProduct
	Corrections []domain.MatchCorrection

	Remote          port.RemoteIntentParser
	CorrectionStore port.CorrectionStore
	Customers       port.CustomerRepository

	Locale string
	Now    func() time.Time
}

// Session is one voice billing session: a cart, order settings, a staged
// customer and the routing state machine around them. Safe for concurrent use;
// the mutex is released while a remote parse is in flight so manual cart edits
// never block on the network.
type Session struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	UserID     uuid.UUID

	mu       sync.Mutex
	state    State
	cart     []domain.CartLine
	settings domain.OrderSettings
	customer *domain.Customer

	pendingMatches   []matcher.Match
	pendingQty       float64
	pendingQuery     string
	pendingCustomers []domain.Customer

	inventory   []domain.InventoryProduct
	corrections []domain.MatchCorrection

	chips   *chipLog
	breaker *circuitBreaker

	remote          port.RemoteIntentParser
	correctionStore port.CorrectionStore
	customers       port.CustomerRepository
	locale          string
	now             func() time.Time
}

// NewSession starts a session over an inventory snapshot taken at session
// start.
func NewSession(cfg Config) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	locale := cfg.Locale
	if locale == "" {
		locale = "en-IN"
	}
	return &Session{
		ID:              uuid.New(),
		BusinessID:      cfg.BusinessID,
		UserID:          cfg.UserID,
		state:           StateIdle,
		settings:        domain.DefaultOrderSettings(),
		inventory:       cfg.Inventory,
		corrections:     cfg.Corrections,
		chips:           newChipLog(now),
		breaker:         newCircuitBreaker(now),
		remote:          cfg.Remote,
		correctionStore: cfg.CorrectionStore,
		customers:       cfg.Customers,
		locale:          locale,
		now:             now,
	}
}

// StartListening moves the session into listening state. Idempotent.
func (s *Session) StartListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle {
		s.state = StateListening
	}
}

// StopListening returns to idle unless a disambiguation pick is pending.
// Idempotent; an utterance already being routed runs to completion.
func (s *Session) StopListening() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateListening {
		s.state = StateIdle
	}
}

// State returns the current routing state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RouteUtterance routes one finalized transcript. The remote parser is tried
// first when the breaker allows it; any failure falls back to the local
// cascade, and an unparsed utterance becomes an implicit add-item attempt.
func (s *Session) RouteUtterance(ctx context.Context, text string) *RouteResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return &RouteResult{Notice: "could not understand"}
	}

	s.mu.Lock()
	if s.state == StateDisambiguating {
		// A fresh utterance abandons the pending pick.
		s.clearPendingLocked()
		s.state = StateListening
	}
	s.mu.Unlock()

	var notice string
	if s.remote != nil && s.breaker.Allow() {
		parsed, err := s.parseRemote(ctx, text)
		if err == nil {
			s.breaker.RecordSuccess()
			return s.RouteIntent(ctx, parsed, text)
		}
		log.Printf("voice.Session: remote parse failed: %v", err)
		s.breaker.RecordFailure()
	}
	if s.breaker.ShouldNotify() {
		notice = "voice assistant is offline, using on-device understanding"
	}

	res := s.RouteIntent(ctx, intent.ParseLocalIntent(text), text)
	if notice != "" && res.Notice == "" {
		res.Notice = notice
	}
	return res
}

func (s *Session) parseRemote(ctx context.Context, text string) (*intent.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteParseTimeout)
	defer cancel()
	return s.remote.Parse(ctx, text, s.UserID.String(), s.locale)
}

// RouteIntent applies one parsed intent to the session. A nil intent is an
// implicit add-item attempt over the raw text.
func (s *Session) RouteIntent(ctx context.Context, in *intent.Intent, raw string) *RouteResult {
	if in == nil {
		qty, query := intent.ExtractQuantityAndQuery(raw)
		return s.addItem(query, qty, intent.Entities{})
	}

	switch in.Name {
	case intent.SetPayment:
		return s.applyPayment(in.Entities)
	case intent.SetSplitPayment:
		return s.applySplitPayment(in.Entities)
	case intent.SetCredit:
		return s.applyCredit(in.Entities)
	case intent.SetAdvance:
		return s.applyAdvance(in.Entities)
	case intent.SetInvoiceType:
		return s.applyInvoiceType(in.Entities)
	case intent.SetGST:
		return s.applyTaxScheme(in.Entities)
	case intent.SetCharge:
		return s.applyCharges(in.Entities)
	case intent.RemoveItem:
		return s.removeByQuery(in.Entities, raw)
	case intent.SetQuantity:
		return s.setQuantityByQuery(in.Entities)
	case intent.SetCustomer:
		return s.resolveCustomer(ctx, in.Entities, raw)
	case intent.Finalize:
		return &RouteResult{Intent: intent.Finalize}
	case intent.AddItem:
		qty := in.Entities.Quantity
		query := in.Entities.ProductQuery
		if query == "" {
			qty, query = intent.ExtractQuantityAndQuery(raw)
		} else if qty <= 0 {
			qty = 1
		}
		return s.addItem(query, qty, in.Entities)
	default:
		// An intent name outside the shared vocabulary must not touch the
		// cart; the remote parser can emit names this build does not know.
		return &RouteResult{Notice: "could not understand"}
	}
}

func (s *Session) applyPayment(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PaymentMode = e.PaymentMode
	s.chips.Add("payment", fmt.Sprintf("payment: %s", e.PaymentMode))
	return &RouteResult{Intent: intent.SetPayment}
}

func (s *Session) applySplitPayment(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PaymentMode = domain.PaymentModeSplit
	s.settings.SplitPayment = e.Split
	s.chips.Add("payment", fmt.Sprintf("split: %.0f cash / %.0f upi / %.0f card", e.Split.Cash, e.Split.UPI, e.Split.Card))
	return &RouteResult{Intent: intent.SetSplitPayment}
}

func (s *Session) applyCredit(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PaymentMode = domain.PaymentModeCredit
	s.settings.CreditDueDays = e.CreditDays
	s.settings.CreditDueDate = e.CreditDueDate
	s.chips.Add("payment", "payment: credit")
	return &RouteResult{Intent: intent.SetCredit}
}

func (s *Session) applyAdvance(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PaymentMode = domain.PaymentModeAdvance
	s.settings.AdvanceAmount = e.AdvanceAmount
	s.settings.CreditDueDate = e.AdvanceDueDate
	s.chips.Add("payment", fmt.Sprintf("advance: %.2f", e.AdvanceAmount))
	return &RouteResult{Intent: intent.SetAdvance}
}

func (s *Session) applyInvoiceType(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.InvoiceType = e.InvoiceType
	s.chips.Add("invoice", fmt.Sprintf("invoice type: %s", e.InvoiceType))
	return &RouteResult{Intent: intent.SetInvoiceType}
}

func (s *Session) applyTaxScheme(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	scheme := e.TaxScheme()
	s.settings.Scheme = scheme
	s.chips.Add("tax", fmt.Sprintf("tax scheme: %s", scheme.Kind))
	return &RouteResult{Intent: intent.SetGST}
}

func (s *Session) applyCharges(e intent.Entities) *RouteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.DeliveryFee > 0 {
		s.settings.DeliveryFee = e.DeliveryFee
	}
	if e.PackagingFee > 0 {
		s.settings.PackagingFee = e.PackagingFee
	}
	s.chips.Add("charge", fmt.Sprintf("charges: delivery %.0f / packaging %.0f", s.settings.DeliveryFee, s.settings.PackagingFee))
	return &RouteResult{Intent: intent.SetCharge}
}

// removeByQuery drops the cart line best matching the spoken name.
func (s *Session) removeByQuery(e intent.Entities, raw string) *RouteResult {
	query := strings.TrimSpace(e.ProductQuery)
	if query == "" {
		_, query = intent.ExtractQuantityAndQuery(raw)
	}
	if query == "" {
		return &RouteResult{Intent: intent.RemoveItem, Notice: "could not understand"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.cartIndexLocked(query)
	if i < 0 {
		return &RouteResult{Intent: intent.RemoveItem, Notice: "no match found"}
	}
	s.chips.Add("item", fmt.Sprintf("removed %s", s.cart[i].Name))
	s.cart = append(s.cart[:i], s.cart[i+1:]...)
	return &RouteResult{Intent: intent.RemoveItem}
}

// setQuantityByQuery changes a line's quantity. With no product named it
// targets the most recently added line.
func (s *Session) setQuantityByQuery(e intent.Entities) *RouteResult {
	qty := e.Quantity
	if qty <= 0 {
		return &RouteResult{Intent: intent.SetQuantity, Notice: "could not understand"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.cart) - 1
	if q := strings.TrimSpace(e.ProductQuery); q != "" {
		i = s.cartIndexLocked(q)
	}
	if i < 0 || i >= len(s.cart) {
		return &RouteResult{Intent: intent.SetQuantity, Notice: "no match found"}
	}
	s.cart[i].Quantity = qty
	s.chips.Add("item", fmt.Sprintf("%s x%g", s.cart[i].Name, qty))
	return &RouteResult{Intent: intent.SetQuantity}
}

// cartIndexLocked finds the line whose name best matches the query: exact or
// containment first, then needle similarity above the disambiguation floor.
func (s *Session) cartIndexLocked(query string) int {
	q := matcher.NormalizeText(query)
	if q == "" {
		return -1
	}
	best, bestScore := -1, 0.0
	for i := range s.cart {
		name := matcher.NormalizeText(s.cart[i].Name)
		if name == q || strings.Contains(name, q) {
			return i
		}
		if score := matcher.Similarity(q, name); score > 0.6 && score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// addItem resolves a product query against the inventory snapshot. Strong
// identifiers bypass matching entirely; a single confident match is added
// directly; close ties and brand-wide queries park the session in a
// disambiguation prompt.
func (s *Session) addItem(query string, qty float64, e intent.Entities) *RouteResult {
	if p := s.strongIdentifierProduct(e); p != nil {
		line := s.addProduct(p, qty)
		return &RouteResult{Intent: intent.AddItem, AddedLine: line}
	}

	if strings.TrimSpace(query) == "" {
		return &RouteResult{Intent: intent.AddItem, Notice: "could not understand"}
	}

	s.mu.Lock()
	inventory := s.inventory
	corrections := s.corrections
	s.mu.Unlock()

	res := matcher.FindMatchingProducts(query, inventory, corrections, matcher.Options{})
	if res.BrandPrompt != nil {
		matches := make([]matcher.Match, 0, len(res.BrandPrompt.Products))
		for _, p := range res.BrandPrompt.Products {
			matches = append(matches, matcher.Match{Product: p, Score: 1, Confidence: 100})
		}
		s.setPending(matches, qty, query)
		return &RouteResult{Intent: intent.AddItem, BrandPrompt: res.BrandPrompt, Pending: true}
	}
	if len(res.Matches) == 0 {
		return &RouteResult{Intent: intent.AddItem, Notice: "no match found"}
	}

	top := res.Matches[0]
	confident := top.Confidence >= autoAddConfidence
	clearWinner := len(res.Matches) == 1 || top.Confidence-res.Matches[1].Confidence >= closeTieGap
	if confident && clearWinner {
		line := s.addProduct(&top.Product, qty)
		return &RouteResult{Intent: intent.AddItem, AddedLine: line}
	}

	s.setPending(res.Matches, qty, query)
	return &RouteResult{Intent: intent.AddItem, Suggestions: res.Matches, Pending: true}
}

// strongIdentifierProduct resolves SKU, product ID, or an exact/high-confidence
// name straight from the inventory snapshot.
func (s *Session) strongIdentifierProduct(e intent.Entities) *domain.InventoryProduct {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.SKU != "" {
		for i := range s.inventory {
			if strings.EqualFold(s.inventory[i].SKU, e.SKU) {
				return &s.inventory[i]
			}
		}
	}
	if e.ProductID != "" {
		if id, err := uuid.Parse(e.ProductID); err == nil {
			for i := range s.inventory {
				if s.inventory[i].ID == id {
					return &s.inventory[i]
				}
			}
		}
	}
	if (e.Exact || e.Confidence >= strongIdentifierConfidence) && e.ProductQuery != "" {
		needle := matcher.NormalizeText(e.ProductQuery)
		for i := range s.inventory {
			if matcher.NormalizeText(s.inventory[i].Name) == needle {
				return &s.inventory[i]
			}
		}
	}
	return nil
}

func (s *Session) addProduct(p *domain.InventoryProduct, qty float64) *domain.CartLine {
	if qty <= 0 {
		qty = 1
	}
	snap := pricing.NormalizeProduct(p)
	id := p.ID
	line := domain.CartLine{
		CartLineID:   uuid.New(),
		ProductID:    &id,
		SKU:          p.SKU,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Unit:         p.Unit,
		Quantity:     qty,
		PricingMode:  p.PricingMode,
		GSTRate:      p.GSTRate,
		Normalized:   &snap,
		VoiceSourced: true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = append(s.cart, line)
	s.chips.Add("item", fmt.Sprintf("added %gx %s", qty, p.Name))
	return &line
}

func (s *Session) setPending(matches []matcher.Match, qty float64, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingMatches = matches
	s.pendingQty = qty
	s.pendingQuery = query
	s.state = StateDisambiguating
}

func (s *Session) clearPendingLocked() {
	s.pendingMatches = nil
	s.pendingQty = 0
	s.pendingQuery = ""
	s.pendingCustomers = nil
}

// PickSuggestion resolves a pending disambiguation by 1-based index; index 0
// selects the first entry. The confirmed mapping is appended to the learning
// log so the next utterance of the same query skips the prompt.
func (s *Session) PickSuggestion(ctx context.Context, index int) (*RouteResult, error) {
	s.mu.Lock()
	if len(s.pendingMatches) == 0 {
		s.mu.Unlock()
		return nil, domain.ErrNoPendingSuggestions
	}
	if index <= 0 {
		index = 1
	}
	if index > len(s.pendingMatches) {
		s.mu.Unlock()
		return nil, fmt.Errorf("pick %d out of range: %w", index, domain.ErrNoPendingSuggestions)
	}
	picked := s.pendingMatches[index-1]
	qty := s.pendingQty
	query := s.pendingQuery
	s.clearPendingLocked()
	s.state = StateIdle
	s.mu.Unlock()

	line := s.addProduct(&picked.Product, qty)
	s.recordCorrection(ctx, query, &picked.Product)
	return &RouteResult{Intent: intent.AddItem, AddedLine: line}, nil
}

// DismissSuggestions abandons a pending disambiguation. Idempotent.
func (s *Session) DismissSuggestions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearPendingLocked()
	if s.state == StateDisambiguating {
		s.state = StateIdle
	}
}

// recordCorrection persists a user-confirmed query-to-product mapping and
// mirrors it into the in-session snapshot.
func (s *Session) recordCorrection(ctx context.Context, query string, p *domain.InventoryProduct) {
	if query == "" {
		return
	}
	c := domain.MatchCorrection{
		Query:       matcher.NormalizeText(query),
		ProductID:   p.ID,
		ProductName: p.Name,
		ConfirmedAt: s.now(),
	}

	s.mu.Lock()
	s.corrections = append(s.corrections, c)
	if len(s.corrections) > 100 {
		s.corrections = s.corrections[len(s.corrections)-100:]
	}
	s.mu.Unlock()

	if s.correctionStore == nil {
		return
	}
	if err := s.correctionStore.Append(ctx, s.BusinessID, c); err != nil {
		log.Printf("voice.Session: append correction: %v", err)
	}
}

// Lines returns a copy of the cart.
func (s *Session) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.cart))
	copy(out, s.cart)
	return out
}

// AddManualLine appends a manually entered line (keyboard path). The line is
// used as given; no catalog lookup happens.
func (s *Session) AddManualLine(line domain.CartLine) domain.CartLine {
	if line.CartLineID == uuid.Nil {
		line.CartLineID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = append(s.cart, line)
	s.chips.Add("item", fmt.Sprintf("added %s", line.Name))
	return line
}

// UpdateLine replaces the line with the same CartLineID.
func (s *Session) UpdateLine(line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].CartLineID == line.CartLineID {
			s.cart[i] = line
			return nil
		}
	}
	return domain.ErrCartLineNotFound
}

// RemoveLine deletes a line by ID.
func (s *Session) RemoveLine(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].CartLineID == id {
			s.chips.Add("item", fmt.Sprintf("removed %s", s.cart[i].Name))
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return nil
		}
	}
	return domain.ErrCartLineNotFound
}

// Settings returns the current order settings.
func (s *Session) Settings() domain.OrderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings applies a caller-supplied mutation under the session lock.
// Last write wins per field.
func (s *Session) UpdateSettings(apply func(*domain.OrderSettings)) domain.OrderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.settings)
	return s.settings
}

// SetCustomer stages a customer on the session.
func (s *Session) SetCustomer(c *domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customer = c
	if c != nil {
		s.chips.Add("customer", fmt.Sprintf("customer: %s", c.Name))
	}
}

// Customer returns the staged customer, or nil.
func (s *Session) Customer() *domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer
}

// Totals recomputes order totals from the current cart and settings.
func (s *Session) Totals() pricing.OrderTotals {
	s.mu.Lock()
	lines := make([]domain.CartLine, len(s.cart))
	copy(lines, s.cart)
	settings := s.settings
	s.mu.Unlock()
	return pricing.ComputeTotals(lines, settings)
}

// Chips returns the visible slice of the activity feed, newest first.
func (s *Session) Chips() []Chip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chips.Visible()
}

// Snapshot captures everything finalize needs: cart, settings and customer.
func (s *Session) Snapshot() ([]domain.CartLine, domain.OrderSettings, *domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]domain.CartLine, len(s.cart))
	copy(lines, s.cart)
	return lines, s.settings, s.customer
}

// Reset clears cart, settings and customer after a successful finalize.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	s.settings = domain.DefaultOrderSettings()
	s.customer = nil
	s.clearPendingLocked()
	s.state = StateIdle
}
