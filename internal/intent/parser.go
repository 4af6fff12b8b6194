package intent

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"billvox/internal/domain"
)

// The local parser is a fixed-priority keyword cascade. Split pairs are
// checked before the bare payment keyword because a split utterance ("200
// cash 300 upi") always contains the simple keywords too.
var (
	splitPairRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:rupees?|rs\.?)?\s*(?:by|via|in|through)?\s*\b(cash|upi|card)\b`)
	paymentRe     = regexp.MustCompile(`\b(upi|cash|card)\b`)
	creditRe      = regexp.MustCompile(`\b(credit|udhaar|udhar)\b`)
	creditDaysRe  = regexp.MustCompile(`\b(\d{1,3})\s*days?\b`)
	dueDateRe     = regexp.MustCompile(`\bon\s+(.+)$`)
	advanceRe     = regexp.MustCompile(`\b(advance|bayana)\b`)
	amountRe      = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\b`)
	invoiceTypeRe = regexp.MustCompile(`\b(proforma|estimate|quotation|quote)\b`)
	taxInvoiceRe  = regexp.MustCompile(`\btax\s+(invoice|bill)\b`)
	retailRe      = regexp.MustCompile(`\bretail\b`)
	schemeRe      = regexp.MustCompile(`\b(gst|cgst|sgst|igst)\b`)
	offSchemeRe   = regexp.MustCompile(`\b(?:no|without|disable|remove|exclude|off)\s+(?:the\s+)?(gst|cgst|sgst|igst)\b`)
	schemeOffRe   = regexp.MustCompile(`\b(gst|cgst|sgst|igst)\s+(?:off|hatao)\b`)

	deliveryFeeRe  = regexp.MustCompile(`\bdelivery\b(?:\s+(?:charge|charges|fee))?\s*(?:of|at)?\s*(\d+(?:\.\d+)?)`)
	packagingFeeRe = regexp.MustCompile(`\bpack(?:ag)?ing\b(?:\s+(?:charge|charges|fee))?\s*(?:of|at)?\s*(\d+(?:\.\d+)?)`)

	removeRe   = regexp.MustCompile(`\b(?:remove|delete|hatao)\b`)
	quantityRe = regexp.MustCompile(`\b(?:quantity|qty)\b\s*(?:to|of)?\s*(\d+(?:\.\d+)?)`)
	leadVerbRe = regexp.MustCompile(`\b(?:make|set|change)\b`)
	customerRe = regexp.MustCompile(`\bcustomer\b`)
	emailRe    = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	phoneTokRe = regexp.MustCompile(`^\+?\d[\d-]*$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

var schemeRateRes = map[string]*regexp.Regexp{
	"gst":  regexp.MustCompile(`\bgst\b\s*(?:@|at|of|rate)?\s*(\d{1,3})`),
	"cgst": regexp.MustCompile(`\bcgst\b\s*(?:@|at|of|rate)?\s*(\d{1,3})`),
	"sgst": regexp.MustCompile(`\bsgst\b\s*(?:@|at|of|rate)?\s*(\d{1,3})`),
	"igst": regexp.MustCompile(`\bigst\b\s*(?:@|at|of|rate)?\s*(\d{1,3})`),
}

// ParseLocalIntent runs the keyword cascade over a finalized utterance.
// First match wins. A nil return means the utterance carries no recognized
// command and should be treated as an implicit add-item attempt.
func ParseLocalIntent(text string) *Intent {
	t := normalize(text)
	if t == "" {
		return nil
	}

	if in := parseSplitPayment(t); in != nil {
		return in
	}
	if in := parsePaymentMode(t); in != nil {
		return in
	}
	if in := parseCredit(t); in != nil {
		return in
	}
	if in := parseAdvance(t); in != nil {
		return in
	}
	if in := parseInvoiceType(t); in != nil {
		return in
	}
	if in := parseGST(t); in != nil {
		return in
	}
	if in := parseCharge(t); in != nil {
		return in
	}
	if in := parseRemoveItem(t); in != nil {
		return in
	}
	if in := parseSetQuantity(t); in != nil {
		return in
	}
	if in := parseCustomer(t); in != nil {
		return in
	}
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func parseSplitPayment(t string) *Intent {
	pairs := splitPairRe.FindAllStringSubmatch(t, -1)
	if len(pairs) < 2 {
		return nil
	}
	var split domain.SplitPayment
	for _, p := range pairs {
		amt, err := strconv.ParseFloat(p[1], 64)
		if err != nil {
			continue
		}
		switch p[2] {
		case "cash":
			split.Cash += amt
		case "upi":
			split.UPI += amt
		case "card":
			split.Card += amt
		}
	}
	return &Intent{
		Name: SetSplitPayment,
		Entities: Entities{
			PaymentMode: domain.PaymentModeSplit,
			Split:       split,
		},
	}
}

func parsePaymentMode(t string) *Intent {
	m := paymentRe.FindStringSubmatch(t)
	if m == nil {
		return nil
	}
	var mode domain.PaymentMode
	switch m[1] {
	case "upi":
		mode = domain.PaymentModeUPI
	case "cash":
		mode = domain.PaymentModeCash
	case "card":
		mode = domain.PaymentModeCard
	}
	return &Intent{Name: SetPayment, Entities: Entities{PaymentMode: mode}}
}

func parseCredit(t string) *Intent {
	if !creditRe.MatchString(t) {
		return nil
	}
	e := Entities{PaymentMode: domain.PaymentModeCredit}
	if m := creditDaysRe.FindStringSubmatch(t); m != nil {
		e.CreditDays, _ = strconv.Atoi(m[1])
	} else if m := dueDateRe.FindStringSubmatch(t); m != nil {
		e.CreditDueDate = strings.TrimSpace(m[1])
	}
	return &Intent{Name: SetCredit, Entities: e}
}

func parseAdvance(t string) *Intent {
	if !advanceRe.MatchString(t) {
		return nil
	}
	e := Entities{PaymentMode: domain.PaymentModeAdvance}
	if m := amountRe.FindStringSubmatch(t); m != nil {
		e.AdvanceAmount, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := dueDateRe.FindStringSubmatch(t); m != nil {
		e.AdvanceDueDate = strings.TrimSpace(m[1])
	}
	return &Intent{Name: SetAdvance, Entities: e}
}

func parseInvoiceType(t string) *Intent {
	if m := invoiceTypeRe.FindStringSubmatch(t); m != nil {
		kind := m[1]
		if kind == "quotation" {
			kind = "quote"
		}
		return &Intent{Name: SetInvoiceType, Entities: Entities{InvoiceType: domain.InvoiceType(kind)}}
	}
	if taxInvoiceRe.MatchString(t) {
		return &Intent{Name: SetInvoiceType, Entities: Entities{InvoiceType: domain.InvoiceTypeTax}}
	}
	if retailRe.MatchString(t) {
		return &Intent{Name: SetInvoiceType, Entities: Entities{InvoiceType: domain.InvoiceTypeRetail}}
	}
	return nil
}

// parseGST handles every scheme toggle. An off keyword applies only to the
// scheme it names; "no gst" still switches everything off because plain GST
// is the umbrella scheme. Of the schemes left enabled, IGST excludes
// CGST/SGST/GST and CGST/SGST exclude plain GST. A GST rate stated while
// CGST/SGST is active and no per-half rate is given splits floor/ceil across
// the halves.
func parseGST(t string) *Intent {
	mentions := map[string]bool{}
	for _, m := range schemeRe.FindAllStringSubmatch(t, -1) {
		mentions[m[1]] = true
	}
	if len(mentions) == 0 {
		return nil
	}

	off := map[string]bool{}
	for _, m := range offSchemeRe.FindAllStringSubmatch(t, -1) {
		off[m[1]] = true
	}
	for _, m := range schemeOffRe.FindAllStringSubmatch(t, -1) {
		off[m[1]] = true
	}
	if off["gst"] {
		return &Intent{Name: SetGST}
	}
	enabled := map[string]bool{}
	for label := range mentions {
		if !off[label] {
			enabled[label] = true
		}
	}
	if len(enabled) == 0 {
		return &Intent{Name: SetGST}
	}

	rates := map[string]float64{}
	for label, re := range schemeRateRes {
		if m := re.FindStringSubmatch(t); m != nil {
			rates[label], _ = strconv.ParseFloat(m[1], 64)
		}
	}

	e := Entities{}
	switch {
	case enabled["igst"]:
		e.IncludeIGST = true
		e.IGSTRate = rates["igst"]
		if e.IGSTRate == 0 {
			e.IGSTRate = rates["gst"]
		}
	case enabled["cgst"] || enabled["sgst"]:
		e.IncludeCGST = true
		e.IncludeSGST = true
		e.CGSTRate = rates["cgst"]
		e.SGSTRate = rates["sgst"]
		if e.CGSTRate == 0 && e.SGSTRate == 0 && rates["gst"] > 0 {
			e.CGSTRate = math.Floor(rates["gst"] / 2)
			e.SGSTRate = rates["gst"] - e.CGSTRate
		}
	default:
		e.IncludeGST = true
		e.GSTRate = rates["gst"]
	}
	return &Intent{Name: SetGST, Entities: e}
}

// parseCharge picks up delivery and packaging fees. Either keyword alone is
// enough; both can appear in one utterance.
func parseCharge(t string) *Intent {
	e := Entities{}
	matched := false
	if m := deliveryFeeRe.FindStringSubmatch(t); m != nil {
		e.DeliveryFee, _ = strconv.ParseFloat(m[1], 64)
		matched = true
	}
	if m := packagingFeeRe.FindStringSubmatch(t); m != nil {
		e.PackagingFee, _ = strconv.ParseFloat(m[1], 64)
		matched = true
	}
	if !matched {
		return nil
	}
	return &Intent{Name: SetCharge, Entities: e}
}

// parseRemoveItem strips the removal keyword; everything left is the product
// query. GST removals never reach here, the scheme cascade step runs first.
func parseRemoveItem(t string) *Intent {
	if !removeRe.MatchString(t) {
		return nil
	}
	q := strings.Join(strings.Fields(removeRe.ReplaceAllString(t, " ")), " ")
	return &Intent{Name: RemoveItem, Entities: Entities{ProductQuery: q}}
}

// parseSetQuantity matches "quantity N"; the remaining words name the line.
// An empty remainder leaves the target to the session, which picks the most
// recent line.
func parseSetQuantity(t string) *Intent {
	m := quantityRe.FindStringSubmatch(t)
	if m == nil {
		return nil
	}
	qty, _ := strconv.ParseFloat(m[1], 64)
	q := strings.Replace(t, m[0], " ", 1)
	q = leadVerbRe.ReplaceAllString(q, " ")
	q = strings.Join(strings.Fields(q), " ")
	return &Intent{Name: SetQuantity, Entities: Entities{Quantity: qty, ProductQuery: q}}
}

// parseCustomer matches the customer keyword and splits the remainder into
// email, phone, and name. A bare "customer" yields empty entities; the
// session stages a Walk-in draft for it.
func parseCustomer(t string) *Intent {
	if !customerRe.MatchString(t) {
		return nil
	}
	rest := customerRe.ReplaceAllString(t, " ")

	e := Entities{}
	if m := emailRe.FindString(rest); m != "" {
		e.CustomerEmail = m
		rest = strings.Replace(rest, m, " ", 1)
	}

	fields := strings.Fields(rest)
	var words, phoneToks []string
	digits := 0
	for _, f := range fields {
		if phoneTokRe.MatchString(f) {
			phoneToks = append(phoneToks, f)
			digits += len(nonDigitRe.ReplaceAllString(f, ""))
			continue
		}
		words = append(words, f)
	}
	if digits >= 10 {
		e.CustomerPhone = nonDigitRe.ReplaceAllString(strings.Join(phoneToks, ""), "")
		e.CustomerName = strings.Join(words, " ")
	} else {
		// Short numbers are part of the spoken name ("flat 12"), not a phone.
		e.CustomerName = strings.Join(fields, " ")
	}
	return &Intent{Name: SetCustomer, Entities: e}
}

var bareNumberRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)

// ExtractQuantityAndQuery pulls the first bare numeric token out of an
// utterance as the quantity; the rest is the product query. No number means
// quantity 1.
func ExtractQuantityAndQuery(text string) (float64, string) {
	fields := strings.Fields(normalize(text))
	qty := 1.0
	taken := false
	rest := make([]string, 0, len(fields))
	for _, f := range fields {
		if !taken && bareNumberRe.MatchString(f) {
			if v, err := strconv.ParseFloat(f, 64); err == nil {
				qty = v
				taken = true
				continue
			}
		}
		rest = append(rest, f)
	}
	if qty <= 0 {
		qty = 1
	}
	return qty, strings.Join(rest, " ")
}
