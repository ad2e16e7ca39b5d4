package numeric

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

const guardBits = 32

func newFloat(prec uint) *big.Float { return new(big.Float).SetPrec(prec) }

func intFloat(n int64, prec uint) *big.Float { return newFloat(prec).SetInt64(n) }

// round returns x rounded to prec bits.
func round(x *big.Float, prec uint) *big.Float { return newFloat(prec).Set(x) }

// converged reports whether term no longer affects sum at wp bits.
func converged(term, sum *big.Float, wp uint) bool {
	if term.Sign() == 0 {
		return true
	}
	if sum.Sign() == 0 {
		return false
	}
	return term.MantExp(nil) < sum.MantExp(nil)-int(wp)
}

// Pi returns pi to prec bits using Machin's formula
// pi = 16 atan(1/5) - 4 atan(1/239).
func Pi(prec uint) *big.Float {
	wp := prec + guardBits
	a := atanInv(5, wp)
	b := atanInv(239, wp)
	a.Mul(a, intFloat(16, wp))
	b.Mul(b, intFloat(4, wp))
	return round(a.Sub(a, b), prec)
}

// atanInv sums atan(1/n) = sum (-1)^k / ((2k+1) n^(2k+1)).
func atanInv(n int64, wp uint) *big.Float {
	n2 := intFloat(n*n, wp)
	power := newFloat(wp).Quo(intFloat(1, wp), intFloat(n, wp))
	sum := newFloat(wp).Set(power)
	t := newFloat(wp)
	for k := int64(1); ; k++ {
		power.Quo(power, n2)
		t.Quo(power, intFloat(2*k+1, wp))
		if converged(t, sum, wp) {
			break
		}
		if k%2 == 1 {
			sum.Sub(sum, t)
		} else {
			sum.Add(sum, t)
		}
	}
	return sum
}

// E returns Euler's number to prec bits.
func E(prec uint) *big.Float {
	return round(bigfloat.Exp(intFloat(1, prec+guardBits)), prec)
}

// GoldenRatio returns (1 + sqrt 5) / 2 to prec bits.
func GoldenRatio(prec uint) *big.Float {
	wp := prec + guardBits
	s := newFloat(wp).Sqrt(intFloat(5, wp))
	s.Add(s, intFloat(1, wp))
	return round(s.Quo(s, intFloat(2, wp)), prec)
}

// Exp returns e^x at prec bits.
func Exp(x *big.Float, prec uint) *big.Float {
	return round(bigfloat.Exp(newFloat(prec+guardBits).Set(x)), prec)
}

// Log returns the natural logarithm of x > 0 at prec bits.
func Log(x *big.Float, prec uint) (*big.Float, error) {
	if x.Sign() <= 0 {
		return nil, ErrDomain
	}
	return round(bigfloat.Log(newFloat(prec+guardBits).Set(x)), prec), nil
}

// Sqrt returns the square root of x >= 0 at prec bits.
func Sqrt(x *big.Float, prec uint) (*big.Float, error) {
	if x.Sign() < 0 {
		return nil, ErrDomain
	}
	return newFloat(prec).Sqrt(x), nil
}

// Pow returns x^y at prec bits. Integer exponents are exact up to rounding;
// other exponents need x > 0.
func Pow(x, y *big.Float, prec uint) (*big.Float, error) {
	wp := prec + guardBits
	if y.IsInt() {
		if n, acc := y.Int64(); acc == big.Exact && n > -1<<20 && n < 1<<20 {
			if n < 0 && x.Sign() == 0 {
				return nil, ErrDomain
			}
			return round(powInt(newFloat(wp).Set(x), n), prec), nil
		}
	}
	switch x.Sign() {
	case 0:
		if y.Sign() > 0 {
			return newFloat(prec), nil
		}
		return nil, ErrDomain
	case -1:
		return nil, ErrDomain
	}
	return round(bigfloat.Pow(newFloat(wp).Set(x), newFloat(wp).Set(y)), prec), nil
}

// powInt computes x^n by repeated squaring.
func powInt(x *big.Float, n int64) *big.Float {
	wp := x.Prec()
	neg := n < 0
	if neg {
		n = -n
	}
	r := intFloat(1, wp)
	b := newFloat(wp).Set(x)
	for n > 0 {
		if n&1 == 1 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		n >>= 1
	}
	if neg {
		return r.Quo(intFloat(1, wp), r)
	}
	return r
}
