package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer minor units. Ledger amounts are
// accumulated in cents so rollups and profit splits stay exact; conversion to
// decimal happens only at the API edge.
type Cents int64

// FromDecimal converts a decimal major-unit amount into cents, rounding
// half-up at two places.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// ParseDecimalString parses a major-unit amount such as "1234.56" into cents.
func ParseDecimalString(value string) (Cents, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return FromDecimal(d), nil
}

// Decimal returns the amount as a two-place decimal in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String renders the amount in major units with two decimal places.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// ShareByPercent returns the portion of total owed to a side holding
// `percent` (0-100) and the remainder owed to the other side. The remainder is
// defined as total minus the rounded share, so the two always sum to total
// exactly, including for negative totals.
func ShareByPercent(total Cents, percent int64) (share, remainder Cents) {
	if percent <= 0 {
		return 0, total
	}
	if percent >= 100 {
		return total, 0
	}
	scaled := int64(total) * percent
	// round half away from zero
	if scaled >= 0 {
		share = Cents((scaled + 50) / 100)
	} else {
		share = Cents((scaled - 50) / 100)
	}
	return share, total - share
}
