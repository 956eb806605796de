package money

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"math"
	"strings"
)

// Cents adalah nilai uang dalam satuan terkecil (minor units).
type Cents int64

var (
	ErrMalformed = errors.New("malformed amount")
	ErrNegative  = errors.New("amount must not be negative")
	ErrSubCent   = errors.New("amount has more than 2 decimal places")
	ErrTooLarge  = errors.New("amount is too large")
	hundred      = decimal.NewFromInt(100)
	maxCents     = decimal.NewFromInt(math.MaxInt64)
)

// Parse converts a decimal string such as "19.99" or "3000" to cents.
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMalformed
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return FromDecimal(d)
}

func FromDecimal(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, ErrNegative
	}
	c := d.Mul(hundred)
	if !c.IsInteger() {
		return 0, ErrSubCent
	}
	if c.GreaterThan(maxCents) {
		return 0, ErrTooLarge
	}
	return Cents(c.IntPart()), nil
}

func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// String selalu 2 digit desimal, e.g. 11994 -> "119.94".
func (c Cents) String() string { return c.Decimal().StringFixed(2) }

// Mul returns c*qty, or ErrTooLarge when the product leaves int64. qty >= 0.
func (c Cents) Mul(qty int) (Cents, error) {
	if qty < 0 {
		return 0, ErrNegative
	}
	if qty != 0 && c > Cents(math.MaxInt64)/Cents(qty) {
		return 0, ErrTooLarge
	}
	return c * Cents(qty), nil
}

// Add returns c+o for non-negative amounts, or ErrTooLarge on overflow.
func (c Cents) Add(o Cents) (Cents, error) {
	if o > Cents(math.MaxInt64)-c {
		return 0, ErrTooLarge
	}
	return c + o, nil
}
