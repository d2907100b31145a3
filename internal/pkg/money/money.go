package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a currency amount in integer cents.
type Cents int64

var (
	ErrInvalidAmount   = errors.New("invalid currency amount")
	ErrTooManyDecimals = errors.New("currency amount has more than 2 decimal places")

	hundred = decimal.NewFromInt(100)
)

// FromDecimal rounds d to the nearest cent, half away from zero.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads a plain decimal string such as "1187.5" or "1187.50".
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("%w: %q", ErrTooManyDecimals, s)
	}
	return FromDecimal(d), nil
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

func (c Cents) IsNegative() bool {
	return c < 0
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts both "12.34" and 12.34.
func (c *Cents) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	v, err := Parse(string(raw))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Sum adds amounts.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
