package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stripe reports prices in minor units (cents). Stored prices are
// two-decimal major units.

// FromMinorUnits converts a minor-unit decimal string ("1999") into a
// two-decimal price (19.99).
func FromMinorUnits(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse minor units %q: %w", s, err)
	}
	return d.Shift(-2).Round(2), nil
}

// ToMinorUnits converts a stored price back into its minor-unit string.
func ToMinorUnits(d decimal.Decimal) string {
	return d.Round(2).Shift(2).String()
}

// Normalize truncates a minor-unit string to whole minor units, matching
// the precision FromMinorUnits preserves.
func Normalize(s string) (string, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("parse minor units %q: %w", s, err)
	}
	return d.Round(0).String(), nil
}
