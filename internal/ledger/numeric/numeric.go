// Package numeric implements the exact rational money representation used by
// splits: an int64 numerator over an int64 denominator, where the denominator
// is the commodity's smallest-unit divisor (100 for a currency with cents).
package numeric

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keepbook/keepbook/internal/ledger/shared"
)

// Numeric is an exact num/denom pair. The zero value is 0/0 and invalid;
// use Zero or New.
type Numeric struct {
	Num   int64
	Denom int64
}

// New builds a rational from a numerator and denominator.
func New(num, denom int64) Numeric {
	return Numeric{Num: num, Denom: denom}
}

// Zero returns 0 over the given denominator.
func Zero(denom int64) Numeric {
	return Numeric{Num: 0, Denom: denom}
}

// Neg negates exactly: same denominator, negated numerator. Applying this
// before any division is what makes a two-split transaction sum to zero by
// construction.
func (n Numeric) Neg() Numeric {
	return Numeric{Num: -n.Num, Denom: n.Denom}
}

// IsZero reports whether the value is zero.
func (n Numeric) IsZero() bool {
	return n.Num == 0
}

// Add sums two rationals exactly. Unequal denominators are rescaled to the
// least common denominator; if that rescale cannot be represented in int64
// the denominators are unreconcilable and ErrMixedDenominator is returned.
func (n Numeric) Add(other Numeric) (Numeric, error) {
	if n.Denom <= 0 || other.Denom <= 0 {
		return Numeric{}, fmt.Errorf("numeric: non-positive denominator in %s + %s", n, other)
	}
	if n.Denom == other.Denom {
		sum, ok := addInt64(n.Num, other.Num)
		if !ok {
			return Numeric{}, fmt.Errorf("%w: %s + %s overflows", shared.ErrMixedDenominator, n, other)
		}
		return Numeric{Num: sum, Denom: n.Denom}, nil
	}

	common := lcm(n.Denom, other.Denom)
	if common <= 0 {
		return Numeric{}, fmt.Errorf("%w: no common denominator for %d and %d", shared.ErrMixedDenominator, n.Denom, other.Denom)
	}
	a, okA := mulInt64(n.Num, common/n.Denom)
	b, okB := mulInt64(other.Num, common/other.Denom)
	if !okA || !okB {
		return Numeric{}, fmt.Errorf("%w: rescaling %s + %s to /%d overflows", shared.ErrMixedDenominator, n, other, common)
	}
	sum, ok := addInt64(a, b)
	if !ok {
		return Numeric{}, fmt.Errorf("%w: %s + %s overflows", shared.ErrMixedDenominator, n, other)
	}
	return Numeric{Num: sum, Denom: common}, nil
}

// Decimal converts to a decimal value for display and input edges. The core
// never compares or sums through this path.
func (n Numeric) Decimal() decimal.Decimal {
	return decimal.New(n.Num, 0).Div(decimal.New(n.Denom, 0))
}

// FromDecimal converts a decimal amount to a rational over the given
// denominator, rounding to the nearest representable unit.
func FromDecimal(d decimal.Decimal, denom int64) Numeric {
	num := d.Mul(decimal.New(denom, 0)).Round(0).IntPart()
	return Numeric{Num: num, Denom: denom}
}

func (n Numeric) String() string {
	return fmt.Sprintf("%d/%d", n.Num, n.Denom)
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, false
	}
	return sum, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	g := gcd(a, b)
	if g == 0 {
		return 0
	}
	l, ok := mulInt64(a/g, b)
	if !ok {
		return 0
	}
	return l
}
