package payouts

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalcInput is one store's allocated slice of an order plus that store's
// commission terms.
type CalcInput struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal

	CommissionRatePercent decimal.Decimal
	CommissionMinAmount   decimal.Decimal
	TaxRatePercent        decimal.Decimal
	PayoutDelayDays       int

	// Platform-wide VAT rate applied on the commission itself.
	CommissionVATPercent decimal.Decimal
}

// Breakdown is the computed payout for one order-store pair.
type Breakdown struct {
	CommissionPercent     decimal.Decimal
	CommissionMin         decimal.Decimal
	CommissionAmount      decimal.Decimal
	CommissionVATPercent  decimal.Decimal
	CommissionVATAmount   decimal.Decimal
	CommissionGrossAmount decimal.Decimal
	NetAmount             decimal.Decimal
	ScheduledAt           time.Time
}

// Calculate derives commission, VAT-on-commission and net payout. Pure and
// deterministic; performs no I/O.
//
// Commission is charged on the tax-exclusive product amount when the store
// has a tax rate configured. The commission floor always wins over a smaller
// percentage figure. Net may go negative when commission exceeds the store
// total; it is surfaced as-is for manual reconciliation, never clamped.
func Calculate(input CalcInput, now time.Time) Breakdown {
	productsNet := input.Subtotal.Sub(input.Discount)
	if productsNet.IsNegative() {
		productsNet = decimal.Zero
	}

	base := productsNet
	if input.TaxRatePercent.IsPositive() {
		base = productsNet.Mul(hundred.Sub(input.TaxRatePercent)).Div(hundred)
	}

	commission := base.Mul(input.CommissionRatePercent).Div(hundred).Round(2)
	if commission.LessThan(input.CommissionMinAmount) {
		commission = input.CommissionMinAmount
	}

	vat := commission.Mul(input.CommissionVATPercent).Div(hundred).Round(2)
	gross := commission.Add(vat)

	return Breakdown{
		CommissionPercent:     input.CommissionRatePercent,
		CommissionMin:         input.CommissionMinAmount,
		CommissionAmount:      commission,
		CommissionVATPercent:  input.CommissionVATPercent,
		CommissionVATAmount:   vat,
		CommissionGrossAmount: gross,
		NetAmount:             input.Total.Sub(gross).Round(2),
		ScheduledAt:           now.AddDate(0, 0, input.PayoutDelayDays),
	}
}
