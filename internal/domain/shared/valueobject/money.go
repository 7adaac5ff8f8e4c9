package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a value object representing monetary amounts in integer
// minor-currency units (cents). Prices and order totals are stored this way
// so that arithmetic never loses precision; decimal is used only at the
// edges to parse and render display-unit amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount int64
}

// NewMoney creates Money from an amount in minor units
func NewMoney(minorUnits int64) Money {
	return Money{amount: minorUnits}
}

// ParseMoney parses a display-unit amount string (e.g. "12.34") into Money.
// More than two fractional digits is rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	minor := d.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("amount %q has more than two fractional digits", s)
	}
	return Money{amount: minor.IntPart()}, nil
}

// MinorUnits returns the amount in minor units
func (m Money) MinorUnits() int64 {
	return m.amount
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// MulQuantity returns the amount multiplied by a quantity
func (m Money) MulQuantity(qty int64) Money {
	return Money{amount: m.amount * qty}
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Equals checks if two amounts are equal
func (m Money) Equals(other Money) bool {
	return m.amount == other.amount
}

// Display returns the amount formatted in display units (e.g. "12.34")
func (m Money) Display() string {
	return decimal.NewFromInt(m.amount).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// String implements fmt.Stringer
func (m Money) String() string {
	return m.Display()
}
