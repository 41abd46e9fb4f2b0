// Package money applies percentage rates to integer amounts in the smallest currency unit.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ApplyRate returns amount × rate rounded half-up to the smallest unit.
// Negative amounts are treated as zero; the cart never produces them.
func ApplyRate(amount int64, rate decimal.Decimal) int64 {
	if amount <= 0 || !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

// MustRate parses a literal rate such as "0.15" and panics on malformed input.
// It is meant for package-level catalogs only.
func MustRate(value string) decimal.Decimal {
	rate, err := ParseRate(value)
	if err != nil {
		panic(err)
	}
	return rate
}

// ParseRate parses a non-negative fractional rate.
func ParseRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", value, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("rate %q must be non-negative", value)
	}
	return rate, nil
}

// Format renders an amount with its currency code, e.g. "5000 BDT".
func Format(amount int64, currency string) string {
	return fmt.Sprintf("%d %s", amount, currency)
}
