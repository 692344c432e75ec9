package money

import (
	"github.com/shopspring/decimal"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
)

// scale is the number of fractional digits every persisted amount carries.
const scale = 2

// Amount is an exact base-10 monetary value. The zero value is 0.00.
// All ledger arithmetic goes through this type; binary floating point is
// never used for money.
type Amount struct {
	d decimal.Decimal
}

// Zero returns the 0.00 amount.
func Zero() Amount {
	return Amount{d: decimal.Zero}
}

// Parse converts a decimal string into an Amount. Values with more than two
// fractional digits are rejected rather than silently rounded.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, apperr.Wrap(apperr.KindInvalidAmount, "malformed amount "+s, err)
	}
	if d.Exponent() < -scale {
		return Amount{}, apperr.Newf(apperr.KindInvalidAmount, "amount %s has more than %d fractional digits", s, scale)
	}
	return Amount{d: d}, nil
}

// MustParse is Parse for literals in tests and seeds; it panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal wraps an already-scanned decimal value.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

// Decimal exposes the underlying value for persistence drivers.
func (a Amount) Decimal() decimal.Decimal { return a.d }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }

func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

func (a Amount) Neg() Amount { return Amount{d: a.d.Neg()} }

// Cmp returns -1, 0 or 1 comparing a against b.
func (a Amount) Cmp(b Amount) int { return a.d.Cmp(b.d) }

func (a Amount) Equal(b Amount) bool { return a.d.Cmp(b.d) == 0 }

func (a Amount) IsPositive() bool { return a.d.IsPositive() }

func (a Amount) IsNegative() bool { return a.d.IsNegative() }

func (a Amount) IsZero() bool { return a.d.IsZero() }

// String renders the canonical two-digit form used for persistence and the
// wire, rounding half-up at the final digit.
func (a Amount) String() string {
	return a.d.StringFixed(scale)
}

// MarshalJSON emits the canonical decimal string, never a float.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts a decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
