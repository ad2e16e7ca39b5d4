package expr

import (
	"math/big"
)

// maxExactExponent bounds exact rational powers so a stray Power[2, 10^9]
// cannot allocate without limit.
const maxExactExponent = 4096

// Rebuild reassembles head[args...], canonicalising Times, Plus and Power.
func Rebuild(head string, args []Expr) Expr {
	switch head {
	case HeadTimes:
		return Times(args...)
	case HeadPlus:
		return Plus(args...)
	case HeadPower:
		if len(args) == 2 {
			return Power(args[0], args[1])
		}
	}
	return NewCall(head, args...)
}

// Times builds a product: nested products are flattened, exact numeric
// factors folded into one leading coefficient, and unit factors dropped.
func Times(factors ...Expr) Expr {
	coeff := big.NewRat(1, 1)
	others := make([]Expr, 0, len(factors))
	var collect func(fs []Expr)
	collect = func(fs []Expr) {
		for _, f := range fs {
			if c, ok := f.(*Call); ok && c.head == HeadTimes {
				collect(c.args)
				continue
			}
			if r, ok := ExactRat(f); ok {
				coeff.Mul(coeff, r)
				continue
			}
			others = append(others, f)
		}
	}
	collect(factors)

	if coeff.Sign() == 0 && !anyReal(others) {
		return Int(0)
	}
	if len(others) == 0 {
		return FromRat(coeff)
	}
	if coeff.Cmp(big.NewRat(1, 1)) == 0 {
		if len(others) == 1 {
			return others[0]
		}
		return &Call{head: HeadTimes, args: others}
	}
	return &Call{head: HeadTimes, args: append([]Expr{FromRat(coeff)}, others...)}
}

// Plus builds a sum with the same flattening and exact folding as Times.
func Plus(terms ...Expr) Expr {
	sum := new(big.Rat)
	others := make([]Expr, 0, len(terms))
	var collect func(ts []Expr)
	collect = func(ts []Expr) {
		for _, t := range ts {
			if c, ok := t.(*Call); ok && c.head == HeadPlus {
				collect(c.args)
				continue
			}
			if r, ok := ExactRat(t); ok {
				sum.Add(sum, r)
				continue
			}
			others = append(others, t)
		}
	}
	collect(terms)

	if sum.Sign() != 0 {
		others = append(others, FromRat(sum))
	}
	switch len(others) {
	case 0:
		return Int(0)
	case 1:
		return others[0]
	}
	return &Call{head: HeadPlus, args: others}
}

// Power builds base^exp, evaluating exact rational bases raised to integers.
func Power(base, exp Expr) Expr {
	if IsIntegerValue(exp, 1) {
		return base
	}
	if IsIntegerValue(base, 1) && IsExact(exp) {
		return Int(1)
	}
	if IsIntegerValue(exp, 0) && !IsIntegerValue(base, 0) {
		return Int(1)
	}
	if b, ok := ExactRat(base); ok {
		if e, ok := exp.(*Integer); ok && e.IsInt64() {
			n := e.Int64()
			if n < 0 && b.Sign() == 0 {
				return Sym(SymComplexInfinity)
			}
			if n >= -maxExactExponent && n <= maxExactExponent {
				return FromRat(ratPow(b, n))
			}
		}
	}
	if p, ok := base.(*Call); ok && p.head == HeadPower && len(p.args) == 2 {
		inner, ok1 := p.args[1].(*Integer)
		outer, ok2 := exp.(*Integer)
		if ok1 && ok2 {
			return Power(p.args[0], BigInt(new(big.Int).Mul(inner.val, outer.val)))
		}
	}
	return &Call{head: HeadPower, args: []Expr{base, exp}}
}

// Neg returns -e.
func Neg(e Expr) Expr { return Times(Int(-1), e) }

// Sqrt returns e^(1/2).
func Sqrt(e Expr) Expr { return Power(e, Rat(1, 2)) }

// Divide returns a/b.
func Divide(a, b Expr) Expr { return Times(a, Power(b, Int(-1))) }

func ratPow(b *big.Rat, n int64) *big.Rat {
	neg := n < 0
	if neg {
		n = -n
	}
	num := new(big.Int).Exp(b.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(b.Denom(), big.NewInt(n), nil)
	if neg {
		num, den = den, num
		if den.Sign() < 0 {
			num.Neg(num)
			den.Neg(den)
		}
	}
	return new(big.Rat).SetFrac(num, den)
}

func anyReal(es []Expr) bool {
	for _, e := range es {
		if ContainsReal(e) {
			return true
		}
	}
	return false
}
