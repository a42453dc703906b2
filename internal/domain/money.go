package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary value with a scale of two decimal
// digits, stored as an integer number of cents. All balance and amount
// arithmetic in the engine goes through this type so that no operation
// can introduce binary floating-point drift.
type Money struct {
	cents int64
}

// MoneyFromCents builds a Money from an integer number of cents.
func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

// ParseMoney parses a decimal string into Money. It rejects values that
// are negative or carry more than two fractional digits.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("ParseMoney: %q: %w", s, ErrInvalidAmount)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("ParseMoney: negative value %q: %w", s, ErrInvalidAmount)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return Money{}, fmt.Errorf("ParseMoney: more than 2 decimal places in %q: %w", s, ErrInvalidAmount)
	}
	scaled := d.Mul(centsPerUnit)
	// IntPart truncates to the low 64 bits, so an oversized cent count
	// would silently wrap into a small positive amount. Reject it instead.
	if !scaled.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("ParseMoney: %q exceeds the representable range: %w", s, ErrInvalidAmount)
	}
	return Money{cents: scaled.IntPart()}, nil
}

var (
	centsPerUnit  = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// Cents returns the raw cent count.
func (m Money) Cents() int64 { return m.cents }

// Decimal returns the value as an exact two-decimal-place decimal.
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.cents, -2) }

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Sub subtracts other from m. It fails with ErrMoneyUnderflow when the
// result would be negative; Money never represents a negative quantity.
func (m Money) Sub(other Money) (Money, error) {
	if other.cents > m.cents {
		return Money{}, fmt.Errorf("Sub: %s - %s: %w", m, other, ErrMoneyUnderflow)
	}
	return Money{cents: m.cents - other.cents}, nil
}

// MulRateOverMonths computes m * rate * (months / 12), rounding half up
// to whole cents. The division happens last so exact half-cent results
// never lose precision before rounding; dividing by 12 first would
// truncate the year fraction and turn 8.5 cents into 8.4999... which
// rounds the wrong way.
func (m Money) MulRateOverMonths(rate decimal.Decimal, months int) Money {
	raw := decimal.NewFromInt(m.cents).Mul(rate).Mul(decimal.NewFromInt(int64(months)))
	return Money{cents: raw.DivRound(monthsPerYear, 0).IntPart()}
}

// Cmp returns -1, 0 or +1 comparing m against other.
func (m Money) Cmp(other Money) int {
	switch {
	case m.cents < other.cents:
		return -1
	case m.cents > other.cents:
		return 1
	default:
		return 0
	}
}

func (m Money) IsZero() bool     { return m.cents == 0 }
func (m Money) IsPositive() bool { return m.cents > 0 }

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON emits the value as a plain JSON number with exactly two
// decimal places, e.g. 1050.25.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string
// and applies the same precision rules as ParseMoney.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
