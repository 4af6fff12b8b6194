package voice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billvox/internal/domain"
	"billvox/internal/intent"
)

type fakeRemote struct {
	calls  int
	intent *intent.Intent
	err    error
}

func (f *fakeRemote) Parse(ctx context.Context, text, userID, locale string) (*intent.Intent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

type fakeCorrectionStore struct {
	appended []domain.MatchCorrection
}

func (f *fakeCorrectionStore) List(ctx context.Context, businessID uuid.UUID) ([]domain.MatchCorrection, error) {
	return f.appended, nil
}

func (f *fakeCorrectionStore) Append(ctx context.Context, businessID uuid.UUID, c domain.MatchCorrection) error {
	f.appended = append(f.appended, c)
	return nil
}

func catalogProduct(name, brand, sku string, mrp, rate float64) domain.InventoryProduct {
	return domain.InventoryProduct{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		Brand:       brand,
		Category:    "Oral Care",
		Unit:        "pc",
		PricingMode: domain.PricingModeMRPInclusive,
		GSTRate:     rate,
		MRP:         mrp,
		IsActive:    true,
	}
}

func testInventory() []domain.InventoryProduct {
	return []domain.InventoryProduct{
		catalogProduct("Colgate MaxFresh 150g", "Colgate", "CLG-MF-150", 118, 18),
		catalogProduct("Colgate Strong Teeth 200g", "Colgate", "CLG-ST-200", 236, 18),
		catalogProduct("Dabur Red Paste 100g", "Dabur", "DBR-RP-100", 95, 18),
	}
}

func newTestSession(inv []domain.InventoryProduct, remote *fakeRemote) (*Session, *fakeCorrectionStore) {
	store := &fakeCorrectionStore{}
	cfg := Config{
		BusinessID:      uuid.New(),
		UserID:          uuid.New(),
		Inventory:       inv,
		CorrectionStore: store,
	}
	if remote != nil {
		cfg.Remote = remote
	}
	return NewSession(cfg), store
}

func TestSession_ListeningLifecycleIdempotent(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	assert.Equal(t, StateIdle, s.State())
	s.StartListening()
	s.StartListening()
	assert.Equal(t, StateListening, s.State())
	s.StopListening()
	s.StopListening()
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_RouteUtterance_AddsConfidentMatch(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")

	require.NotNil(t, res.AddedLine)
	assert.Equal(t, "Colgate MaxFresh 150g", res.AddedLine.Name)
	assert.Equal(t, 2.0, res.AddedLine.Quantity)
	assert.True(t, res.AddedLine.VoiceSourced)
	require.NotNil(t, res.AddedLine.Normalized)
	assert.Equal(t, "118", res.AddedLine.Normalized.UnitPriceGross.String())

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2.0, lines[0].Quantity)
}

func TestSession_RouteUtterance_BrandQueryPromptsDisambiguation(t *testing.T) {
	s, store := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "colgate")

	require.NotNil(t, res.BrandPrompt)
	assert.True(t, res.Pending)
	assert.Equal(t, StateDisambiguating, s.State())
	assert.Empty(t, s.Lines())

	picked, err := s.PickSuggestion(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Colgate Strong Teeth 200g", picked.AddedLine.Name)
	assert.Equal(t, StateIdle, s.State())

	require.Len(t, store.appended, 1)
	assert.Equal(t, "colgate", store.appended[0].Query)
	assert.Equal(t, "Colgate Strong Teeth 200g", store.appended[0].ProductName)
}

func TestSession_PickSuggestion_DefaultsToFirst(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "colgate")

	picked, err := s.PickSuggestion(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "Colgate MaxFresh 150g", picked.AddedLine.Name)
}

func TestSession_PickSuggestion_NoPending(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	_, err := s.PickSuggestion(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoPendingSuggestions)
}

func TestSession_DismissSuggestions(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "colgate")

	s.DismissSuggestions()
	s.DismissSuggestions()
	assert.Equal(t, StateIdle, s.State())
	_, err := s.PickSuggestion(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoPendingSuggestions)
}

func TestSession_NewUtteranceAbandonsPendingPick(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "colgate")
	require.Equal(t, StateDisambiguating, s.State())

	res := s.RouteUtterance(context.Background(), "gst 18 percent")
	assert.Equal(t, intent.SetGST, res.Intent)
	_, err := s.PickSuggestion(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNoPendingSuggestions)
}

func TestSession_RouteUtterance_NoMatchNotice(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "cement bag")

	assert.Equal(t, "no match found", res.Notice)
	assert.Empty(t, s.Lines())
}

func TestSession_RouteUtterance_SetGST(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "gst 18 percent")

	assert.Equal(t, intent.SetGST, res.Intent)
	settings := s.Settings()
	assert.Equal(t, domain.TaxSchemeGST, settings.Scheme.Kind)
	assert.Equal(t, 18.0, settings.Scheme.GSTRate)
}

func TestSession_TaxSchemeMutualExclusivity(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	s.RouteUtterance(context.Background(), "cgst 9 sgst 9")
	assert.Equal(t, domain.TaxSchemeCGSTSGST, s.Settings().Scheme.Kind)

	s.RouteUtterance(context.Background(), "apply igst 18")
	scheme := s.Settings().Scheme
	assert.Equal(t, domain.TaxSchemeIGST, scheme.Kind)
	assert.Zero(t, scheme.CGSTRate)
	assert.Zero(t, scheme.SGSTRate)
	assert.Zero(t, scheme.GSTRate)

	s.RouteUtterance(context.Background(), "no gst")
	assert.Equal(t, domain.TaxSchemeNone, s.Settings().Scheme.Kind)
}

func TestSession_RouteUtterance_SplitPayment(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	s.RouteUtterance(context.Background(), "200 cash 300 upi")

	settings := s.Settings()
	assert.Equal(t, domain.PaymentModeSplit, settings.PaymentMode)
	assert.Equal(t, 200.0, settings.SplitPayment.Cash)
	assert.Equal(t, 300.0, settings.SplitPayment.UPI)
}

func TestSession_RouteUtterance_BareCustomerStagesWalkIn(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "customer")

	assert.Equal(t, intent.SetCustomer, res.Intent)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "Walk-in", res.Customer.Name)
	assert.True(t, res.Customer.IsDraft)
	require.NotNil(t, s.Customer())
	assert.Equal(t, "Walk-in", s.Customer().Name)
	assert.Empty(t, s.Lines())
}

func TestSession_RouteUtterance_CustomerDetailsStageDraft(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "customer ramesh 9876543210")

	assert.Equal(t, intent.SetCustomer, res.Intent)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "ramesh", res.Customer.Name)
	assert.Equal(t, "9876543210", res.Customer.Phone)
	assert.True(t, res.Customer.IsDraft)
	assert.Empty(t, s.Lines())
}

func TestSession_RouteUtterance_SetsCharges(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteUtterance(context.Background(), "delivery 50 packing 20")

	assert.Equal(t, intent.SetCharge, res.Intent)
	settings := s.Settings()
	assert.Equal(t, 50.0, settings.DeliveryFee)
	assert.Equal(t, 20.0, settings.PackagingFee)
}

func TestSession_RouteUtterance_RemovesLineByName(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")
	require.Len(t, s.Lines(), 1)

	res := s.RouteUtterance(context.Background(), "remove colgate maxfresh")

	assert.Equal(t, intent.RemoveItem, res.Intent)
	assert.Empty(t, res.Notice)
	assert.Empty(t, s.Lines())
}

func TestSession_RouteUtterance_RemoveUnknownLineNotices(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")

	res := s.RouteUtterance(context.Background(), "remove cement bag")

	assert.Equal(t, "no match found", res.Notice)
	assert.Len(t, s.Lines(), 1)
}

func TestSession_RouteUtterance_SetQuantityTargetsNamedLine(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")

	res := s.RouteUtterance(context.Background(), "colgate maxfresh quantity 5")

	assert.Equal(t, intent.SetQuantity, res.Intent)
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5.0, lines[0].Quantity)
}

func TestSession_RouteUtterance_SetQuantityDefaultsToLastLine(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")
	s.RouteUtterance(context.Background(), "1 dabur red paste 100g")

	s.RouteUtterance(context.Background(), "quantity 4")

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2.0, lines[0].Quantity)
	assert.Equal(t, 4.0, lines[1].Quantity)
}

func TestSession_UnknownIntentLeavesCartAlone(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteIntent(context.Background(), &intent.Intent{Name: "update_profile"}, "remove colgate from favourites")

	assert.Equal(t, "could not understand", res.Notice)
	assert.Nil(t, res.AddedLine)
	assert.Empty(t, s.Lines())
}

func TestSession_RemoteRemoveIntentRoutesToRemoval(t *testing.T) {
	remote := &fakeRemote{intent: &intent.Intent{
		Name:     intent.RemoveItem,
		Entities: intent.Entities{ProductQuery: "colgate maxfresh"},
	}}
	s, _ := newTestSession(testInventory(), remote)
	s.RouteIntent(context.Background(), &intent.Intent{
		Name:     intent.AddItem,
		Entities: intent.Entities{SKU: "clg-mf-150", Quantity: 1},
	}, "colgate maxfresh")
	require.Len(t, s.Lines(), 1)

	res := s.RouteUtterance(context.Background(), "take colgate maxfresh off the bill")

	assert.Equal(t, intent.RemoveItem, res.Intent)
	assert.Empty(t, s.Lines())
}

func TestSession_StrongIdentifierBypassesMatching(t *testing.T) {
	inv := testInventory()
	s, _ := newTestSession(inv, nil)

	res := s.RouteIntent(context.Background(), &intent.Intent{
		Name:     intent.AddItem,
		Entities: intent.Entities{SKU: "dbr-rp-100", Quantity: 3},
	}, "3 dabur red")

	require.NotNil(t, res.AddedLine)
	assert.Equal(t, "Dabur Red Paste 100g", res.AddedLine.Name)
	assert.Equal(t, 3.0, res.AddedLine.Quantity)
}

func TestSession_HighConfidenceExactNameBypass(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)

	res := s.RouteIntent(context.Background(), &intent.Intent{
		Name: intent.AddItem,
		Entities: intent.Entities{
			ProductQuery: "Colgate Strong Teeth 200g",
			Confidence:   0.97,
			Quantity:     1,
		},
	}, "colgate strong teeth")

	require.NotNil(t, res.AddedLine)
	assert.Equal(t, "Colgate Strong Teeth 200g", res.AddedLine.Name)
}

func TestSession_CircuitBreakerDisablesRemoteAfterThreeFailures(t *testing.T) {
	remote := &fakeRemote{err: errors.New("status 502")}
	s, _ := newTestSession(testInventory(), remote)

	for i := 0; i < 3; i++ {
		s.RouteUtterance(context.Background(), "gst 18 percent")
	}
	assert.Equal(t, 3, remote.calls)

	res := s.RouteUtterance(context.Background(), "gst 18 percent")
	assert.Equal(t, 3, remote.calls, "fourth utterance must not attempt the network")
	assert.Equal(t, intent.SetGST, res.Intent)
	assert.Equal(t, domain.TaxSchemeGST, s.Settings().Scheme.Kind)
}

func TestSession_RemoteSuccessResetsBreaker(t *testing.T) {
	remote := &fakeRemote{intent: &intent.Intent{
		Name:     intent.SetGST,
		Entities: intent.Entities{IncludeGST: true, GSTRate: 12},
	}}
	s, _ := newTestSession(testInventory(), remote)

	res := s.RouteUtterance(context.Background(), "twelve percent tax please")

	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, intent.SetGST, res.Intent)
	assert.Equal(t, 12.0, s.Settings().Scheme.GSTRate)
}

func TestSession_ManualLineEditsWhileVoicePending(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "colgate")

	line := s.AddManualLine(domain.CartLine{
		Name:        "Loose Sugar",
		Quantity:    2,
		Price:       45,
		PricingMode: domain.PricingModeSellingSimple,
	})
	require.NotEqual(t, uuid.Nil, line.CartLineID)

	line.Quantity = 3
	require.NoError(t, s.UpdateLine(line))
	require.NoError(t, s.RemoveLine(line.CartLineID))
	assert.ErrorIs(t, s.RemoveLine(line.CartLineID), domain.ErrCartLineNotFound)
}

func TestSession_TotalsRecompute(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")

	totals := s.Totals()
	assert.Equal(t, "200", totals.Subtotal.String())
	assert.Equal(t, "36", totals.RowTax.String())
	assert.Equal(t, "236", totals.GrandTotal.String())
}

func TestSession_ChipsBounded(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	for i := 0; i < 40; i++ {
		s.RouteUtterance(context.Background(), "gst 18 percent")
	}

	assert.Len(t, s.Chips(), chipsVisible)
}

func TestSession_ResetClearsEverything(t *testing.T) {
	s, _ := newTestSession(testInventory(), nil)
	s.RouteUtterance(context.Background(), "2 colgate maxfresh 150g")
	s.RouteUtterance(context.Background(), "gst 18 percent")
	s.SetCustomer(&domain.Customer{Name: "Ramesh"})

	s.Reset()

	assert.Empty(t, s.Lines())
	assert.Nil(t, s.Customer())
	assert.Equal(t, domain.TaxSchemeNone, s.Settings().Scheme.Kind)
	assert.Equal(t, StateIdle, s.State())
}

func TestNormalizeIntentName(t *testing.T) {
	assert.Equal(t, "add_item", normalizeIntentName("AddItem"))
	assert.Equal(t, "add_item", normalizeIntentName("add-item"))
	assert.Equal(t, "add_item", normalizeIntentName("ADD ITEM"))
	assert.Equal(t, "set_gst", normalizeIntentName("set_gst"))
}

func TestCircuitBreaker_NoticeOncePerMinute(t *testing.T) {
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.Allow())

	assert.True(t, b.ShouldNotify())
	current = current.Add(30 * time.Second)
	assert.False(t, b.ShouldNotify())
	current = current.Add(31 * time.Second)
	assert.True(t, b.ShouldNotify())
}

func TestCircuitBreaker_RecoversAfterCooldown(t *testing.T) {
	current := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	b := newCircuitBreaker(func() time.Time { return current })

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.Allow())

	current = current.Add(2*time.Minute + time.Second)
	assert.True(t, b.Allow())
	assert.False(t, b.ShouldNotify())
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	b := newCircuitBreaker(nil)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.True(t, b.Allow())
}
