package symbolic

import (
	"math/big"
	"sync"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

// Backend produces exact closed forms. Simplify returns false when it has
// nothing better than the unevaluated call.
type Backend interface {
	Simplify(name string, args []expr.Expr) (expr.Expr, bool)
}

const (
	// maxFactorialArg bounds exact factorials built for Gamma and Beta.
	maxFactorialArg = 1000
	// maxLegendreDegree bounds the explicit polynomial expansion.
	maxLegendreDegree = 64
)

type simplifier struct {
	arity int
	fn    func(args []expr.Expr) (expr.Expr, bool)
}

// ClosedForms knows the classical special values of the built-in functions.
// It is stateless and safe for concurrent use.
type ClosedForms struct {
	table map[string]simplifier
}

// NewClosedForms returns the closed-form backend.
func NewClosedForms() *ClosedForms {
	return &ClosedForms{table: map[string]simplifier{
		"erf":      {1, erf},
		"LambertW": {1, lambertW},
		"zeta":     {1, zeta},
		"besselj":  {2, besselJ},
		"bessely":  {2, besselY},
		"legendre": {2, legendre},
		"gamma":    {1, gamma},
		"loggamma": {1, logGamma},
		"beta":     {2, beta},
	}}
}

// Simplify implements Backend.
func (c *ClosedForms) Simplify(name string, args []expr.Expr) (expr.Expr, bool) {
	s, ok := c.table[name]
	if !ok || len(args) != s.arity {
		return nil, false
	}
	return s.fn(args)
}

var (
	infinity        = expr.Sym(expr.SymInfinity)
	negInfinity     = expr.Neg(expr.Sym(expr.SymInfinity))
	complexInfinity = expr.Sym(expr.SymComplexInfinity)
	pi              = expr.Sym(expr.SymPi)
	minusInverseE   = expr.Neg(expr.Power(expr.Sym(expr.SymE), expr.Int(-1)))
	sqrtPi          = expr.Sqrt(pi)
	sqrtTwoOverPi   = expr.Sqrt(expr.Divide(expr.Int(2), pi))
	half            = expr.Rat(1, 2)
	minusHalf       = expr.Rat(-1, 2)
)

func smallInt(e expr.Expr) (int64, bool) {
	i, ok := e.(*expr.Integer)
	if !ok || !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

func factorial(n int64) *big.Int { return new(big.Int).MulRange(1, n) }

func erf(args []expr.Expr) (expr.Expr, bool) {
	x := args[0]
	switch {
	case expr.IsIntegerValue(x, 0):
		return expr.Int(0), true
	case expr.Equal(x, infinity):
		return expr.Int(1), true
	case expr.Equal(x, negInfinity):
		return expr.Int(-1), true
	}
	return nil, false
}

func lambertW(args []expr.Expr) (expr.Expr, bool) {
	x := args[0]
	switch {
	case expr.IsIntegerValue(x, 0):
		return expr.Int(0), true
	case expr.IsSymbol(x, expr.SymE):
		return expr.Int(1), true
	case expr.Equal(x, minusInverseE):
		return expr.Int(-1), true
	}
	// W(a e^a) = a on the principal branch, a >= -1
	if c, ok := x.(*expr.Call); ok && c.Head() == expr.HeadTimes && c.Len() == 2 {
		a, ok := expr.ExactRat(c.Arg(0))
		p, isPow := c.Arg(1).(*expr.Call)
		if ok && isPow && p.Head() == expr.HeadPower && p.Len() == 2 &&
			expr.IsSymbol(p.Arg(0), expr.SymE) && expr.Equal(c.Arg(0), p.Arg(1)) &&
			a.Cmp(big.NewRat(-1, 1)) >= 0 {
			return c.Arg(0), true
		}
	}
	return nil, false
}

func zeta(args []expr.Expr) (expr.Expr, bool) {
	s, ok := smallInt(args[0])
	if !ok {
		return nil, false
	}
	switch {
	case s == 0:
		return minusHalf, true
	case s == 1:
		return complexInfinity, true
	case s > 0 && s%2 == 0:
		// zeta(2k) = |B_2k| 2^(2k-1) pi^2k / (2k)!
		b, ok := Bernoulli(int(s))
		if !ok {
			return nil, false
		}
		c := new(big.Rat).Abs(b)
		c.Mul(c, new(big.Rat).SetInt(new(big.Int).Lsh(big.NewInt(1), uint(s-1))))
		c.Quo(c, new(big.Rat).SetInt(factorial(s)))
		return expr.Times(expr.FromRat(c), expr.Power(pi, expr.Int(s))), true
	case s < 0:
		// zeta(-n) = -B_(n+1) / (n+1)
		n := -s
		b, ok := Bernoulli(int(n + 1))
		if !ok {
			return nil, false
		}
		b.Quo(b, big.NewRat(-(n + 1), 1))
		return expr.FromRat(b), true
	}
	return nil, false
}

// besselJ covers integer orders at zero and the half orders
// J(1/2, x) = Sqrt[2/Pi] Sin[x]/Sqrt[x], J(-1/2, x) = Sqrt[2/Pi] Cos[x]/Sqrt[x].
func besselJ(args []expr.Expr) (expr.Expr, bool) {
	nu, x := args[0], args[1]
	zero := expr.IsIntegerValue(x, 0)
	if n, ok := smallInt(nu); ok && zero {
		if n == 0 {
			return expr.Int(1), true
		}
		return expr.Int(0), true
	}
	switch {
	case expr.Equal(nu, half):
		if zero {
			return expr.Int(0), true
		}
		return halfOrder(expr.HeadSin, x, false), true
	case expr.Equal(nu, minusHalf):
		if zero {
			return complexInfinity, true
		}
		return halfOrder(expr.HeadCos, x, false), true
	}
	return nil, false
}

// besselY covers the half orders
// Y(1/2, x) = -Sqrt[2/Pi] Cos[x]/Sqrt[x], Y(-1/2, x) = Sqrt[2/Pi] Sin[x]/Sqrt[x].
func besselY(args []expr.Expr) (expr.Expr, bool) {
	nu, x := args[0], args[1]
	zero := expr.IsIntegerValue(x, 0)
	switch {
	case expr.Equal(nu, half):
		if zero {
			return complexInfinity, true
		}
		return halfOrder(expr.HeadCos, x, true), true
	case expr.Equal(nu, minusHalf):
		if zero {
			return expr.Int(0), true
		}
		return halfOrder(expr.HeadSin, x, false), true
	}
	return nil, false
}

func halfOrder(trig string, x expr.Expr, negate bool) expr.Expr {
	out := expr.Times(sqrtTwoOverPi, expr.NewCall(trig, x), expr.Power(x, minusHalf))
	if negate {
		return expr.Neg(out)
	}
	return out
}

var (
	legendreOnce   sync.Once
	legendreCoeffs [][]*big.Rat
)

// legendreTable holds the coefficients of P_0..P_maxLegendreDegree, lowest
// power first, from (k+1) P_(k+1) = (2k+1) x P_k - k P_(k-1).
func legendreTable() [][]*big.Rat {
	legendreOnce.Do(func() {
		t := make([][]*big.Rat, maxLegendreDegree+1)
		t[0] = []*big.Rat{big.NewRat(1, 1)}
		t[1] = []*big.Rat{new(big.Rat), big.NewRat(1, 1)}
		for k := 1; k < maxLegendreDegree; k++ {
			next := make([]*big.Rat, k+2)
			for i := range next {
				next[i] = new(big.Rat)
			}
			a := big.NewRat(int64(2*k+1), int64(k+1))
			b := big.NewRat(int64(k), int64(k+1))
			for i, c := range t[k] {
				next[i+1].Add(next[i+1], new(big.Rat).Mul(a, c))
			}
			for i, c := range t[k-1] {
				next[i].Sub(next[i], new(big.Rat).Mul(b, c))
			}
			t[k+1] = next
		}
		legendreCoeffs = t
	})
	return legendreCoeffs
}

func legendre(args []expr.Expr) (expr.Expr, bool) {
	n, ok := smallInt(args[0])
	if !ok {
		return nil, false
	}
	if n < 0 {
		n = -n - 1
	}
	if n > maxLegendreDegree {
		return nil, false
	}
	x := args[1]
	coeffs := legendreTable()[n]
	terms := make([]expr.Expr, 0, len(coeffs))
	for k, c := range coeffs {
		if c.Sign() == 0 {
			continue
		}
		if k == 0 {
			terms = append(terms, expr.FromRat(c))
			continue
		}
		terms = append(terms, expr.Times(expr.FromRat(c), expr.Power(x, expr.Int(int64(k)))))
	}
	return expr.Plus(terms...), true
}

func gamma(args []expr.Expr) (expr.Expr, bool) {
	x := args[0]
	if n, ok := smallInt(x); ok {
		switch {
		case n <= 0:
			return complexInfinity, true
		case n <= maxFactorialArg:
			return expr.BigInt(factorial(n - 1)), true
		}
		return nil, false
	}
	r, ok := x.(*expr.Rational)
	if !ok {
		return nil, false
	}
	v := r.Rat()
	if v.Denom().Cmp(big.NewInt(2)) != 0 || !v.Num().IsInt64() {
		return nil, false
	}
	// x = m + 1/2
	m := (v.Num().Int64() - 1) / 2
	if m > maxFactorialArg/2 || m < -maxFactorialArg/2 {
		return nil, false
	}
	var c *big.Rat
	if m >= 0 {
		// gamma(m + 1/2) = (2m)! / (4^m m!) sqrt(pi)
		den := new(big.Int).Lsh(factorial(m), uint(2*m))
		c = new(big.Rat).SetFrac(factorial(2*m), den)
	} else {
		// gamma(1/2 - k) = (-4)^k k! / (2k)! sqrt(pi)
		k := -m
		num := new(big.Int).Lsh(factorial(k), uint(2*k))
		if k%2 == 1 {
			num.Neg(num)
		}
		c = new(big.Rat).SetFrac(num, factorial(2*k))
	}
	return expr.Times(expr.FromRat(c), sqrtPi), true
}

func logGamma(args []expr.Expr) (expr.Expr, bool) {
	n, ok := smallInt(args[0])
	if !ok {
		return nil, false
	}
	switch {
	case n <= 0:
		return infinity, true
	case n <= 2:
		return expr.Int(0), true
	case n <= maxFactorialArg:
		return expr.NewCall(expr.HeadLog, expr.BigInt(factorial(n-1))), true
	}
	return nil, false
}

func beta(args []expr.Expr) (expr.Expr, bool) {
	a, ok1 := smallInt(args[0])
	b, ok2 := smallInt(args[1])
	if !ok1 || !ok2 || a <= 0 || b <= 0 || a+b > maxFactorialArg {
		return nil, false
	}
	num := new(big.Int).Mul(factorial(a-1), factorial(b-1))
	return expr.FromRat(new(big.Rat).SetFrac(num, factorial(a+b-1))), true
}
