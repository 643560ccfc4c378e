// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Decimal represents an exact fixed-precision value.
// Uses decimal.Decimal to avoid floating-point errors: all quantity, price and
// tax arithmetic in the platform goes through this type.
type Decimal = decimal.Decimal

// Serialization scales. Quantities and unit prices carry ten fractional digits,
// tax percentages and currency amounts carry two.
const (
	QuantityScale = 10
	AmountScale   = 2
)

// NewDecimalFromString parses a Decimal from a string.
// This is the preferred constructor for monetary values.
func NewDecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// NewDecimalFromFloat creates a Decimal from a float.
// WARNING: Use NewDecimalFromString for precise values.
func NewDecimalFromFloat(f float64) Decimal {
	return decimal.NewFromFloat(f)
}

// MustDecimal parses a Decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Decimal value.
func Zero() Decimal {
	return decimal.Zero
}

// FormatQuantity renders a quantity or unit price with exactly ten fractional
// digits, e.g. "20.0000000000".
func FormatQuantity(d Decimal) string {
	return d.StringFixed(QuantityScale)
}

// FormatAmount renders a currency amount or tax percent with exactly two
// fractional digits, e.g. "1.00".
func FormatAmount(d Decimal) string {
	return d.StringFixed(AmountScale)
}

// LineSubtotal computes quantity × unit price with exact decimal multiplication.
func LineSubtotal(quantity, unitPrice Decimal) Decimal {
	return quantity.Mul(unitPrice)
}

// ApplySalesTax adds taxPercent percent on top of a subtotal.
// total = subtotal × (1 + taxPercent/100), computed exactly.
func ApplySalesTax(subtotal, taxPercent Decimal) Decimal {
	hundred := decimal.NewFromInt(100)
	return subtotal.Mul(hundred.Add(taxPercent)).Div(hundred)
}
