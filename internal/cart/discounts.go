package cart

import (
	"strings"

	"github.com/angelmondragon/meaw-storefront/pkg/money"
	"github.com/shopspring/decimal"
)

// DiscountCatalog maps normalized discount codes to rates.
type DiscountCatalog map[string]decimal.Decimal

// DefaultDiscountCatalog returns the storefront's promotional codes.
func DefaultDiscountCatalog() DiscountCatalog {
	return DiscountCatalog{
		"MEAW10":  money.MustRate("0.10"),
		"MEAW20":  money.MustRate("0.20"),
		"WELCOME": money.MustRate("0.15"),
		"EID2024": money.MustRate("0.25"),
		"PAHELA":  money.MustRate("0.15"),
	}
}

// NormalizeCode upper-cases and trims a discount code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup resolves a code case-insensitively.
func (c DiscountCatalog) Lookup(code string) (string, decimal.Decimal, bool) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return "", decimal.Zero, false
	}
	rate, ok := c[normalized]
	if !ok || !rate.IsPositive() {
		return "", decimal.Zero, false
	}
	return normalized, rate, true
}
