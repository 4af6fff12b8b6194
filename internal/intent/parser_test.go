package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billvox/internal/domain"
)

func TestParseLocalIntent_GSTWithRate(t *testing.T) {
	in := ParseLocalIntent("gst 18 percent")

	require.NotNil(t, in)
	assert.Equal(t, SetGST, in.Name)
	assert.True(t, in.Entities.IncludeGST)
	assert.Equal(t, 18.0, in.Entities.GSTRate)
	assert.False(t, in.Entities.IncludeIGST)
	assert.False(t, in.Entities.IncludeCGST)
	assert.False(t, in.Entities.IncludeSGST)
}

func TestParseLocalIntent_NoGSTForcesAllOff(t *testing.T) {
	for _, text := range []string{"no gst", "without gst", "remove igst", "gst off"} {
		in := ParseLocalIntent(text)
		require.NotNil(t, in, text)
		assert.Equal(t, SetGST, in.Name, text)
		assert.False(t, in.Entities.IncludeGST, text)
		assert.False(t, in.Entities.IncludeCGST, text)
		assert.False(t, in.Entities.IncludeSGST, text)
		assert.False(t, in.Entities.IncludeIGST, text)
	}
}

func TestParseLocalIntent_IGSTExcludesOthers(t *testing.T) {
	in := ParseLocalIntent("apply igst 18")

	require.NotNil(t, in)
	assert.True(t, in.Entities.IncludeIGST)
	assert.Equal(t, 18.0, in.Entities.IGSTRate)
	assert.False(t, in.Entities.IncludeGST)
	assert.False(t, in.Entities.IncludeCGST)
	assert.False(t, in.Entities.IncludeSGST)

	scheme := in.Entities.TaxScheme()
	assert.Equal(t, domain.TaxSchemeIGST, scheme.Kind)
	assert.Equal(t, 18.0, scheme.TotalRate())
}

func TestParseLocalIntent_CGSTSGSTSplitsGSTRate(t *testing.T) {
	in := ParseLocalIntent("enable cgst sgst gst 5")

	require.NotNil(t, in)
	assert.True(t, in.Entities.IncludeCGST)
	assert.True(t, in.Entities.IncludeSGST)
	assert.Equal(t, 2.0, in.Entities.CGSTRate)
	assert.Equal(t, 3.0, in.Entities.SGSTRate)
	assert.False(t, in.Entities.IncludeGST)
}

func TestParseLocalIntent_CGSTSGSTExplicitRates(t *testing.T) {
	in := ParseLocalIntent("cgst 9 sgst 9")

	require.NotNil(t, in)
	assert.Equal(t, 9.0, in.Entities.CGSTRate)
	assert.Equal(t, 9.0, in.Entities.SGSTRate)
}

func TestParseLocalIntent_PaymentMode(t *testing.T) {
	cases := map[string]domain.PaymentMode{
		"payment by upi": domain.PaymentModeUPI,
		"cash":           domain.PaymentModeCash,
		"card payment":   domain.PaymentModeCard,
	}
	for text, want := range cases {
		in := ParseLocalIntent(text)
		require.NotNil(t, in, text)
		assert.Equal(t, SetPayment, in.Name, text)
		assert.Equal(t, want, in.Entities.PaymentMode, text)
	}
}

func TestParseLocalIntent_SplitPayment(t *testing.T) {
	in := ParseLocalIntent("200 cash 300 upi")

	require.NotNil(t, in)
	assert.Equal(t, SetSplitPayment, in.Name)
	assert.Equal(t, domain.PaymentModeSplit, in.Entities.PaymentMode)
	assert.Equal(t, 200.0, in.Entities.Split.Cash)
	assert.Equal(t, 300.0, in.Entities.Split.UPI)
	assert.Equal(t, 500.0, in.Entities.Split.Total())
}

func TestParseLocalIntent_SplitPaymentSumsRepeatedKind(t *testing.T) {
	in := ParseLocalIntent("100 cash 50 cash 300 card")

	require.NotNil(t, in)
	assert.Equal(t, SetSplitPayment, in.Name)
	assert.Equal(t, 150.0, in.Entities.Split.Cash)
	assert.Equal(t, 300.0, in.Entities.Split.Card)
}

func TestParseLocalIntent_CreditWithDays(t *testing.T) {
	in := ParseLocalIntent("credit 30 days")

	require.NotNil(t, in)
	assert.Equal(t, SetCredit, in.Name)
	assert.Equal(t, domain.PaymentModeCredit, in.Entities.PaymentMode)
	assert.Equal(t, 30, in.Entities.CreditDays)
}

func TestParseLocalIntent_CreditWithDate(t *testing.T) {
	in := ParseLocalIntent("udhaar on 5 september")

	require.NotNil(t, in)
	assert.Equal(t, SetCredit, in.Name)
	assert.Equal(t, "5 september", in.Entities.CreditDueDate)
}

func TestParseLocalIntent_Advance(t *testing.T) {
	in := ParseLocalIntent("advance 500 on 10 september")

	require.NotNil(t, in)
	assert.Equal(t, SetAdvance, in.Name)
	assert.Equal(t, domain.PaymentModeAdvance, in.Entities.PaymentMode)
	assert.Equal(t, 500.0, in.Entities.AdvanceAmount)
	assert.Equal(t, "10 september", in.Entities.AdvanceDueDate)
}

func TestParseLocalIntent_InvoiceType(t *testing.T) {
	cases := map[string]domain.InvoiceType{
		"make it a proforma": domain.InvoiceTypeProforma,
		"estimate please":    domain.InvoiceTypeEstimate,
		"quotation":          domain.InvoiceTypeQuote,
		"tax invoice":        domain.InvoiceTypeTax,
		"retail bill":        domain.InvoiceTypeRetail,
	}
	for text, want := range cases {
		in := ParseLocalIntent(text)
		require.NotNil(t, in, text)
		assert.Equal(t, SetInvoiceType, in.Name, text)
		assert.Equal(t, want, in.Entities.InvoiceType, text)
	}
}

func TestParseLocalIntent_SchemeOffIsScoped(t *testing.T) {
	in := ParseLocalIntent("remove igst enable gst 18")

	require.NotNil(t, in)
	assert.Equal(t, SetGST, in.Name)
	assert.True(t, in.Entities.IncludeGST)
	assert.Equal(t, 18.0, in.Entities.GSTRate)
	assert.False(t, in.Entities.IncludeIGST)
	assert.False(t, in.Entities.IncludeCGST)
	assert.False(t, in.Entities.IncludeSGST)
}

func TestParseLocalIntent_Charges(t *testing.T) {
	in := ParseLocalIntent("delivery 50 packing 20")

	require.NotNil(t, in)
	assert.Equal(t, SetCharge, in.Name)
	assert.Equal(t, 50.0, in.Entities.DeliveryFee)
	assert.Equal(t, 20.0, in.Entities.PackagingFee)

	in = ParseLocalIntent("delivery charge 40")
	require.NotNil(t, in)
	assert.Equal(t, SetCharge, in.Name)
	assert.Equal(t, 40.0, in.Entities.DeliveryFee)
	assert.Equal(t, 0.0, in.Entities.PackagingFee)

	in = ParseLocalIntent("packaging fee 15")
	require.NotNil(t, in)
	assert.Equal(t, 15.0, in.Entities.PackagingFee)
}

func TestParseLocalIntent_RemoveItem(t *testing.T) {
	in := ParseLocalIntent("remove colgate maxfresh")

	require.NotNil(t, in)
	assert.Equal(t, RemoveItem, in.Name)
	assert.Equal(t, "colgate maxfresh", in.Entities.ProductQuery)

	in = ParseLocalIntent("dabur red hatao")
	require.NotNil(t, in)
	assert.Equal(t, RemoveItem, in.Name)
	assert.Equal(t, "dabur red", in.Entities.ProductQuery)
}

func TestParseLocalIntent_SetQuantity(t *testing.T) {
	in := ParseLocalIntent("colgate quantity 3")

	require.NotNil(t, in)
	assert.Equal(t, SetQuantity, in.Name)
	assert.Equal(t, 3.0, in.Entities.Quantity)
	assert.Equal(t, "colgate", in.Entities.ProductQuery)

	in = ParseLocalIntent("make qty 5")
	require.NotNil(t, in)
	assert.Equal(t, SetQuantity, in.Name)
	assert.Equal(t, 5.0, in.Entities.Quantity)
	assert.Equal(t, "", in.Entities.ProductQuery)
}

func TestParseLocalIntent_CustomerBareKeyword(t *testing.T) {
	in := ParseLocalIntent("customer")

	require.NotNil(t, in)
	assert.Equal(t, SetCustomer, in.Name)
	assert.Empty(t, in.Entities.CustomerName)
	assert.Empty(t, in.Entities.CustomerPhone)
	assert.Empty(t, in.Entities.CustomerEmail)
}

func TestParseLocalIntent_CustomerNamePhoneEmail(t *testing.T) {
	in := ParseLocalIntent("customer ramesh 98765 43210")

	require.NotNil(t, in)
	assert.Equal(t, SetCustomer, in.Name)
	assert.Equal(t, "ramesh", in.Entities.CustomerName)
	assert.Equal(t, "9876543210", in.Entities.CustomerPhone)

	in = ParseLocalIntent("customer priya priya@example.com")
	require.NotNil(t, in)
	assert.Equal(t, "priya", in.Entities.CustomerName)
	assert.Equal(t, "priya@example.com", in.Entities.CustomerEmail)
}

func TestParseLocalIntent_CustomerShortNumberStaysInName(t *testing.T) {
	in := ParseLocalIntent("customer sharma flat 12")

	require.NotNil(t, in)
	assert.Equal(t, "sharma flat 12", in.Entities.CustomerName)
	assert.Empty(t, in.Entities.CustomerPhone)
}

func TestParseLocalIntent_NoMatchReturnsNil(t *testing.T) {
	assert.Nil(t, ParseLocalIntent("2 colgate maxfresh"))
	assert.Nil(t, ParseLocalIntent(""))
	assert.Nil(t, ParseLocalIntent("   "))
}

func TestExtractQuantityAndQuery(t *testing.T) {
	qty, query := ExtractQuantityAndQuery("2 colgate maxfresh")
	assert.Equal(t, 2.0, qty)
	assert.Equal(t, "colgate maxfresh", query)

	qty, query = ExtractQuantityAndQuery("colgate maxfresh")
	assert.Equal(t, 1.0, qty)
	assert.Equal(t, "colgate maxfresh", query)

	qty, query = ExtractQuantityAndQuery("maggi 70g pack 3")
	assert.Equal(t, 3.0, qty)
	assert.Equal(t, "maggi 70g pack", query)

	qty, query = ExtractQuantityAndQuery("1.5 basmati rice")
	assert.Equal(t, 1.5, qty)
	assert.Equal(t, "basmati rice", query)
}
