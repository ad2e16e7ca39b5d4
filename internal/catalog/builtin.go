package catalog

import (
	"math"
	"math/big"

	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/precision"
	"github.com/GriffinCanCode/specfn/internal/rules"
)

type builtin struct {
	desc  Descriptor
	rules [][2]string
}

var builtins = []builtin{
	{
		desc:  Descriptor{Name: "Erf", SymbolicName: "erf", NumericName: "erf"},
		rules: [][2]string{{"Erf[0]", "0"}},
	},
	{
		desc:  Descriptor{Name: "Erfc", Custom: erfc},
		rules: [][2]string{{"Erfc[0]", "1"}},
	},
	{
		desc:  Descriptor{Name: "InverseErf", NumericName: "erfinv"},
		rules: [][2]string{{"InverseErf[0]", "0"}},
	},
	{
		desc: Descriptor{Name: "ProductLog", SymbolicName: "LambertW", NumericName: "lambertw"},
		rules: [][2]string{
			{"ProductLog[0]", "0"},
			{"ProductLog[E]", "1"},
			{"ProductLog[z_] * E^ProductLog[z_]", "z"},
		},
	},
	{desc: Descriptor{Name: "Zeta", SymbolicName: "zeta", NumericName: "zeta"}},
	{desc: Descriptor{Name: "BesselJ", SymbolicName: "besselj", NumericName: "besselj"}},
	{desc: Descriptor{Name: "BesselY", SymbolicName: "bessely", NumericName: "bessely"}},
	{desc: Descriptor{
		Name:         "Legendre",
		SymbolicName: "legendre",
		NumericName:  "legendre",
		Prepare:      PrependArgs(expr.Int(1)),
	}},
	{desc: Descriptor{Name: "LegendreP", SymbolicName: "legendre", NumericName: "legendre"}},
	{desc: Descriptor{Name: "Gamma", SymbolicName: "gamma", NumericName: "gamma"}},
	{
		desc:  Descriptor{Name: "LogGamma", SymbolicName: "loggamma", NumericName: "loggamma"},
		rules: [][2]string{{"LogGamma[1]", "0"}, {"LogGamma[2]", "0"}},
	},
	{desc: Descriptor{Name: "Beta", SymbolicName: "beta", NumericName: "beta"}},
}

// RegisterBuiltins registers the built-in special functions and their rules.
func RegisterBuiltins(b *Builder) error {
	for _, bi := range builtins {
		rs := make([]rules.Rule, 0, len(bi.rules))
		for _, decl := range bi.rules {
			r, err := rules.Compile(bi.desc.Name, decl[0], decl[1])
			if err != nil {
				return err
			}
			rs = append(rs, r)
		}
		if err := b.Register(bi.desc, rs...); err != nil {
			return err
		}
	}
	return nil
}

// Builtin returns the catalog of built-in functions.
func Builtin() *Catalog {
	b := NewBuilder()
	if err := RegisterBuiltins(b); err != nil {
		panic(err)
	}
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

const (
	erfcGuardBits = 64
	// maxErfcGuard bounds the extra bits spent on 1 - erf(x) for large x.
	maxErfcGuard = 1 << 14
)

// erfc evaluates 1 - Erf[x]. Exact arguments stay exact: the result is only
// produced when Erf itself simplifies. Numeric evaluation runs Erf with extra
// bits to absorb the cancellation, which grows like x^2 bits.
func erfc(ev Evaluator, args []expr.Expr, ctx precision.Context) (expr.Expr, bool, error) {
	if len(args) != 1 {
		return nil, false, nil
	}
	x := args[0]

	if expr.IsExact(x) && !ctx.Numeric() {
		e, err := ev.EvaluateCall("Erf", args, ctx)
		if err != nil {
			return nil, false, err
		}
		if expr.IsCall(e, "Erf") {
			return nil, false, nil
		}
		return expr.Plus(expr.Int(1), expr.Neg(e)), true, nil
	}

	bits := ev.WorkingPrecision(args, ctx)
	guard := uint(erfcGuardBits)
	if xf, ok := approximate(x); ok && xf > 0 {
		extra := xf * xf * math.Log2E
		if extra > maxErfcGuard {
			return nil, false, nil
		}
		guard += uint(extra)
	}

	e, err := ev.EvaluateCall("Erf", args, ctx.WithPrecision(bits+guard).WithNumeric(true))
	if err != nil {
		return nil, false, err
	}
	r, ok := e.(*expr.Real)
	if !ok {
		return nil, false, nil
	}
	wp := bits + guard
	diff := new(big.Float).SetPrec(wp).Sub(new(big.Float).SetPrec(wp).SetInt64(1), r.Big())
	return expr.Float(new(big.Float).SetPrec(bits).Set(diff)), true, nil
}

// approximate returns a float64 view of a numeric literal.
func approximate(e expr.Expr) (float64, bool) {
	switch v := e.(type) {
	case *expr.Real:
		return v.Float64(), true
	case *expr.Integer, *expr.Rational:
		r, _ := expr.ExactRat(v)
		f, _ := r.Float64()
		return f, true
	}
	return 0, false
}
