// Package money holds the fixed-point currency representation used by the ledger.
//
// Amounts are integer counts of minor units (1/100 of a currency unit) so sums
// over buy-ins, cash-outs and chip counts are exact. Decimal text is only
// produced and consumed at the edges.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor units in one currency unit
const Scale = 100

// DefaultTolerance is the audit slack of 0.10 currency units
const DefaultTolerance Amount = 10

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrTooPrecise    = errors.New("amount has more than two decimal places")
	ErrOutOfRange    = errors.New("amount out of range")

	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)
)

// Amount is a monetary value in minor units
type Amount int64

// FromUnits converts whole currency units to an Amount
func FromUnits(units int64) Amount {
	return Amount(units * Scale)
}

// Parse converts decimal text such as "100", "12.5" or "0.01" into an Amount.
// Any sign is accepted; callers enforce positivity where the ledger requires it.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// ParsePositive parses an amount that must be strictly greater than zero
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if a <= 0 {
		return 0, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, s)
	}
	return a, nil
}

// ParseNonNegative parses an amount that must be zero or greater
func ParseNonNegative(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if a < 0 {
		return 0, fmt.Errorf("%w: %q must not be negative", ErrInvalidAmount, s)
	}
	return a, nil
}

// FromDecimal converts a decimal value, rejecting fractions below one minor unit
func FromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrTooPrecise, d.String())
	}
	if minor.GreaterThan(maxAmount) || minor.LessThan(minAmount) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return Amount(minor.IntPart()), nil
}

// Decimal returns the amount in currency units
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String renders the amount with exactly two decimal places
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Minor returns the raw number of minor units
func (a Amount) Minor() int64 {
	return int64(a)
}

// IsPositive reports whether the amount is greater than zero
func (a Amount) IsPositive() bool {
	return a > 0
}

// MarshalJSON encodes the amount as a JSON number with two decimals
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Abs returns the absolute value of a
func Abs(a Amount) Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Min returns the smaller of a and b
func Min(a, b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// Sum adds all amounts
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// WithinTolerance reports whether a and b differ by no more than tolerance
func WithinTolerance(a, b, tolerance Amount) bool {
	return Abs(a-b) <= tolerance
}
