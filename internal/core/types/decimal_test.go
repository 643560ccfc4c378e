package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatQuantity(t *testing.T) {
	q := MustDecimal("20")
	assert.Equal(t, "20.0000000000", FormatQuantity(q))

	p := MustDecimal("10.5")
	assert.Equal(t, "10.5000000000", FormatQuantity(p))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.00", FormatAmount(MustDecimal("1")))
	assert.Equal(t, "19.99", FormatAmount(MustDecimal("19.99")))
}

func TestLineSubtotal_ExactArithmetic(t *testing.T) {
	// 0.1 * 3 drifts in binary floating point; decimal must be exact.
	subtotal := LineSubtotal(MustDecimal("3"), MustDecimal("0.1"))
	assert.True(t, subtotal.Equal(MustDecimal("0.3")), "got %s", subtotal)

	subtotal = LineSubtotal(MustDecimal("20"), MustDecimal("10"))
	assert.True(t, subtotal.Equal(MustDecimal("200")))
}

func TestApplySalesTax(t *testing.T) {
	// 1% VAT on 200.00
	total := ApplySalesTax(MustDecimal("200"), MustDecimal("1"))
	assert.Equal(t, "202.00", FormatAmount(total))

	// 0% leaves the subtotal untouched
	total = ApplySalesTax(MustDecimal("123.45"), Zero())
	assert.Equal(t, "123.45", FormatAmount(total))
}

func TestNewDecimalFromString_Invalid(t *testing.T) {
	_, err := NewDecimalFromString("not-a-number")
	require.Error(t, err)
}
