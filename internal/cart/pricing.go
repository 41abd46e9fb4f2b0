package cart

import (
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	DefaultFreeShippingThreshold int64 = 5000
	DefaultFlatShippingFee       int64 = 100
	DefaultCurrency                    = "BDT"
)

// PricingPolicy holds the constants used by the totals computation.
type PricingPolicy struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold int64
	FlatShippingFee       int64
	Currency              string
}

// DefaultPricingPolicy is 5% tax, free shipping from 5000 and a flat 100 fee below it.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:               money.MustRate("0.05"),
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
		Currency:              DefaultCurrency,
	}
}

// PricingPolicyFromConfig maps the validated pricing section onto a policy.
func PricingPolicyFromConfig(cfg config.PricingConfig) PricingPolicy {
	return PricingPolicy{
		TaxRate:               cfg.TaxRateDecimal(),
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
		Currency:              cfg.Currency,
	}
}

// ComputeTotals derives totals from lines. DiscountAmount is always zero here;
// the engine carries the discount separately.
func ComputeTotals(lines []Line, policy PricingPolicy) Totals {
	var totals Totals
	for _, line := range lines {
		totals.Subtotal += line.UnitPrice * int64(line.Quantity)
		totals.ItemCount += line.Quantity
	}
	totals.TaxAmount = money.ApplyRate(totals.Subtotal, policy.TaxRate)
	totals.ShippingAmount = policy.shippingFor(totals.Subtotal)
	totals.Total = totals.Subtotal + totals.TaxAmount + totals.ShippingAmount
	return totals
}

func (p PricingPolicy) shippingFor(subtotal int64) int64 {
	if subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return p.FlatShippingFee
}

// withDiscount applies discount to totals, keeping total = subtotal + tax + shipping - discount.
func (t Totals) withDiscount(discount int64) Totals {
	t.DiscountAmount = discount
	t.Total = t.Subtotal + t.TaxAmount + t.ShippingAmount - discount
	return t
}
