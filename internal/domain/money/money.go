package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Cents is an amount of money in the smallest currency unit.
// It travels over JSON as a decimal number (9.99) but is summed as an integer.
type Cents int64

var ErrInvalidAmount = errors.New("invalid amount")

func FromFloat(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrInvalidAmount
	}

	return Cents(math.Round(f * 100)), nil
}

func Parse(s string) (Cents, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	return FromFloat(f)
}

// String formats with exactly two decimals, e.g. "9.99".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (c Cents) Float() float64 {
	return float64(c) / 100
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Cents) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	v, err := Parse(string(b))
	if err != nil {
		return err
	}

	*c = v
	return nil
}

// Sum folds amounts; the sum of nothing is zero.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}

// UnmarshalParam lets gin bind form and query values straight into Cents.
func (c *Cents) UnmarshalParam(param string) error {
	if param == "" {
		return nil
	}

	v, err := Parse(param)
	if err != nil {
		return err
	}

	*c = v
	return nil
}
