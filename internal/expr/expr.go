package expr

import (
	"math/big"
	"strings"
)

// Expr is a node of an expression tree.
type Expr interface {
	String() string
	exprKind() Kind
}

// Kind discriminates the concrete expression types.
type Kind int

const (
	KindInteger Kind = iota
	KindRational
	KindReal
	KindSymbol
	KindCall
	KindBlank
)

// String returns the head name used for blank restrictions (n_Integer).
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindRational:
		return "Rational"
	case KindReal:
		return "Real"
	case KindSymbol:
		return "Symbol"
	case KindCall:
		return "Call"
	case KindBlank:
		return "Blank"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of e.
func KindOf(e Expr) Kind { return e.exprKind() }

// Well-known heads and symbols.
const (
	HeadTimes = "Times"
	HeadPlus  = "Plus"
	HeadPower = "Power"
	HeadEqual = "Equal"
	HeadSqrt  = "Sqrt"
	HeadExp   = "Exp"
	HeadLog   = "Log"
	HeadSin   = "Sin"
	HeadCos   = "Cos"

	SymE               = "E"
	SymPi              = "Pi"
	SymGoldenRatio     = "GoldenRatio"
	SymI               = "I"
	SymInfinity        = "Infinity"
	SymComplexInfinity = "ComplexInfinity"
	SymTrue            = "True"
	SymFalse           = "False"
)

// ============================================================
// Integer
// ============================================================

// Integer is an exact integer.
type Integer struct{ val *big.Int }

// Int returns the Integer n.
func Int(n int64) *Integer { return &Integer{val: big.NewInt(n)} }

// BigInt wraps a copy of v.
func BigInt(v *big.Int) *Integer { return &Integer{val: new(big.Int).Set(v)} }

func (i *Integer) exprKind() Kind { return KindInteger }
func (i *Integer) String() string { return i.val.String() }
func (i *Integer) Big() *big.Int  { return new(big.Int).Set(i.val) }
func (i *Integer) Rat() *big.Rat  { return new(big.Rat).SetInt(i.val) }
func (i *Integer) Sign() int      { return i.val.Sign() }
func (i *Integer) IsInt64() bool  { return i.val.IsInt64() }
func (i *Integer) Int64() int64   { return i.val.Int64() }
func (i *Integer) IsValue(n int64) bool {
	return i.val.IsInt64() && i.val.Int64() == n
}

// ============================================================
// Rational
// ============================================================

// Rational is an exact non-integral fraction.
type Rational struct{ val *big.Rat }

// Rat returns p/q, normalised to an Integer when q divides p.
func Rat(p, q int64) Expr {
	if q == 0 {
		panic("expr: denominator is zero")
	}
	return FromRat(new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q)))
}

// FromRat wraps a copy of r, normalised to an Integer when r is integral.
func FromRat(r *big.Rat) Expr {
	if r.IsInt() {
		return &Integer{val: new(big.Int).Set(r.Num())}
	}
	return &Rational{val: new(big.Rat).Set(r)}
}

func (r *Rational) exprKind() Kind { return KindRational }
func (r *Rational) String() string { return r.val.RatString() }
func (r *Rational) Rat() *big.Rat  { return new(big.Rat).Set(r.val) }
func (r *Rational) Sign() int      { return r.val.Sign() }

// ============================================================
// Real
// ============================================================

// MachinePrecision is the precision in bits of a float64 mantissa.
const MachinePrecision = 53

// Real is an approximate number carrying its precision in bits.
type Real struct{ val *big.Float }

// Float wraps a copy of f, keeping its precision.
func Float(f *big.Float) *Real {
	return &Real{val: new(big.Float).SetPrec(f.Prec()).Set(f)}
}

// MachineReal returns a 53-bit Real.
func MachineReal(f float64) *Real {
	return &Real{val: new(big.Float).SetPrec(MachinePrecision).SetFloat64(f)}
}

func (r *Real) exprKind() Kind { return KindReal }

// Big returns a copy of the value.
func (r *Real) Big() *big.Float { return new(big.Float).SetPrec(r.val.Prec()).Set(r.val) }

// Precision returns the precision in bits.
func (r *Real) Precision() uint { return r.val.Prec() }

func (r *Real) Float64() float64 { f, _ := r.val.Float64(); return f }

// String prints the shortest decimal that round-trips at the value's precision.
func (r *Real) String() string {
	s := r.val.Text('g', -1)
	if !strings.ContainsAny(s, ".eI") {
		s += "."
	}
	return s
}

// ============================================================
// Symbol
// ============================================================

// Symbol is a named atom such as x, E or Pi.
type Symbol struct{ name string }

// Sym returns the symbol called name.
func Sym(name string) *Symbol { return &Symbol{name: name} }

func (s *Symbol) exprKind() Kind { return KindSymbol }
func (s *Symbol) String() string { return s.name }
func (s *Symbol) Name() string   { return s.name }

// ============================================================
// Call
// ============================================================

// Call is a compound expression Head[args...].
type Call struct {
	head string
	args []Expr
}

// NewCall builds head[args...] without any canonicalisation.
func NewCall(head string, args ...Expr) *Call {
	cp := make([]Expr, len(args))
	copy(cp, args)
	return &Call{head: head, args: cp}
}

func (c *Call) exprKind() Kind { return KindCall }
func (c *Call) Head() string   { return c.head }
func (c *Call) Len() int       { return len(c.args) }
func (c *Call) Arg(i int) Expr { return c.args[i] }

// Args returns a copy of the argument list.
func (c *Call) Args() []Expr {
	cp := make([]Expr, len(c.args))
	copy(cp, c.args)
	return cp
}

// ============================================================
// Blank
// ============================================================

// Blank is a pattern wildcard: name_ or name_Head. An empty name matches
// without binding.
type Blank struct {
	name string
	head string
}

// NewBlank returns the wildcard name_head; head may be empty.
func NewBlank(name, head string) *Blank { return &Blank{name: name, head: head} }

func (b *Blank) exprKind() Kind      { return KindBlank }
func (b *Blank) Name() string        { return b.name }
func (b *Blank) Restriction() string { return b.head }
func (b *Blank) String() string      { return b.name + "_" + b.head }

// ============================================================
// Predicates
// ============================================================

// IsSymbol reports whether e is the symbol called name.
func IsSymbol(e Expr, name string) bool {
	s, ok := e.(*Symbol)
	return ok && s.name == name
}

// IsCall reports whether e is a call with the given head.
func IsCall(e Expr, head string) bool {
	c, ok := e.(*Call)
	return ok && c.head == head
}

// IsNumber reports whether e is an Integer, Rational or Real.
func IsNumber(e Expr) bool {
	switch e.(type) {
	case *Integer, *Rational, *Real:
		return true
	}
	return false
}

// ExactRat returns the value of an Integer or Rational.
func ExactRat(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Integer:
		return v.Rat(), true
	case *Rational:
		return v.Rat(), true
	}
	return nil, false
}

// IsIntegerValue reports whether e is the Integer n.
func IsIntegerValue(e Expr, n int64) bool {
	i, ok := e.(*Integer)
	return ok && i.IsValue(n)
}

// ContainsReal reports whether any node of e is a Real.
func ContainsReal(e Expr) bool {
	found := false
	Walk(e, func(n Expr) bool {
		if _, ok := n.(*Real); ok {
			found = true
		}
		return !found
	})
	return found
}

// IsExact reports whether e contains no approximate number.
func IsExact(e Expr) bool { return !ContainsReal(e) }

// MaxPrecision returns the largest Real precision found in e.
func MaxPrecision(e Expr) (uint, bool) {
	var max uint
	found := false
	Walk(e, func(n Expr) bool {
		if r, ok := n.(*Real); ok {
			found = true
			if p := r.Precision(); p > max {
				max = p
			}
		}
		return true
	})
	return max, found
}

// Walk visits e depth-first, pre-order, until fn returns false.
func Walk(e Expr, fn func(Expr) bool) bool {
	if !fn(e) {
		return false
	}
	if c, ok := e.(*Call); ok {
		for _, a := range c.args {
			if !Walk(a, fn) {
				return false
			}
		}
	}
	return true
}

// Equal reports structural equality. Reals must agree in value and precision.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.val.Cmp(y.val) == 0
	case *Rational:
		y, ok := b.(*Rational)
		return ok && x.val.Cmp(y.val) == 0
	case *Real:
		y, ok := b.(*Real)
		return ok && x.val.Prec() == y.val.Prec() && x.val.Cmp(y.val) == 0
	case *Symbol:
		y, ok := b.(*Symbol)
		return ok && x.name == y.name
	case *Blank:
		y, ok := b.(*Blank)
		return ok && x.name == y.name && x.head == y.head
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.head != y.head || len(x.args) != len(y.args) {
			return false
		}
		for i := range x.args {
			if !Equal(x.args[i], y.args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Substitute replaces every symbol named in bindings.
func Substitute(e Expr, bindings map[string]Expr) Expr {
	switch v := e.(type) {
	case *Symbol:
		if r, ok := bindings[v.name]; ok {
			return r
		}
		return v
	case *Call:
		args := make([]Expr, len(v.args))
		for i, a := range v.args {
			args[i] = Substitute(a, bindings)
		}
		return Rebuild(v.head, args)
	}
	return e
}
