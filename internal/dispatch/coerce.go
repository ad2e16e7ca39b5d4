package dispatch

import (
	"errors"
	"math/big"

	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/numeric"
	"github.com/GriffinCanCode/specfn/internal/precision"
)

// coerceGuardBits are carried through compound arguments such as Pi/4 + 1 and
// dropped when the argument is handed to a backend.
const coerceGuardBits = 16

// coerce converts a numeric argument to a big.Float of bits precision. It
// understands numbers, the constants Pi, E and GoldenRatio, elementary
// arithmetic, and catalog calls, which are evaluated numerically. ok is
// false when e has no real value at hand: free symbols, complex values,
// calls that stay unevaluated. Only fatal evaluation errors are returned.
func (d *Dispatcher) coerce(e expr.Expr, bits uint, ctx precision.Context, depth int) (*big.Float, bool, error) {
	f, ok, err := d.coerceAt(e, bits+coerceGuardBits, ctx, depth)
	if err != nil || !ok {
		return nil, false, err
	}
	return new(big.Float).SetPrec(bits).Set(f), true, nil
}

func (d *Dispatcher) coerceAt(e expr.Expr, wp uint, ctx precision.Context, depth int) (*big.Float, bool, error) {
	switch v := e.(type) {
	case *expr.Integer:
		return new(big.Float).SetPrec(wp).SetInt(v.Big()), true, nil
	case *expr.Rational:
		r, _ := expr.ExactRat(v)
		return new(big.Float).SetPrec(wp).SetRat(r), true, nil
	case *expr.Real:
		return new(big.Float).SetPrec(wp).Set(v.Big()), true, nil
	case *expr.Symbol:
		switch v.Name() {
		case expr.SymPi:
			return numeric.Pi(wp), true, nil
		case expr.SymE:
			return numeric.E(wp), true, nil
		case expr.SymGoldenRatio:
			return numeric.GoldenRatio(wp), true, nil
		}
		return nil, false, nil
	case *expr.Call:
		return d.coerceCall(v, wp, ctx, depth)
	}
	return nil, false, nil
}

func (d *Dispatcher) coerceCall(c *expr.Call, wp uint, ctx precision.Context, depth int) (*big.Float, bool, error) {
	args := make([]*big.Float, c.Len())
	operands := func() (bool, error) {
		for i := range args {
			f, ok, err := d.coerceAt(c.Arg(i), wp, ctx, depth)
			if err != nil || !ok {
				return false, err
			}
			args[i] = f
		}
		return true, nil
	}

	switch c.Head() {
	case expr.HeadPlus, expr.HeadTimes:
		if ok, err := operands(); !ok || err != nil {
			return nil, false, err
		}
		acc := new(big.Float).SetPrec(wp)
		if c.Head() == expr.HeadTimes {
			acc.SetInt64(1)
		}
		for _, a := range args {
			if c.Head() == expr.HeadPlus {
				acc.Add(acc, a)
			} else {
				acc.Mul(acc, a)
			}
		}
		return finite(acc)
	case expr.HeadPower:
		if c.Len() != 2 {
			return nil, false, nil
		}
		if ok, err := operands(); !ok || err != nil {
			return nil, false, err
		}
		return elementary(numeric.Pow(args[0], args[1], wp))
	case expr.HeadSqrt, expr.HeadExp, expr.HeadLog:
		if c.Len() != 1 {
			return nil, false, nil
		}
		if ok, err := operands(); !ok || err != nil {
			return nil, false, err
		}
		switch c.Head() {
		case expr.HeadSqrt:
			return elementary(numeric.Sqrt(args[0], wp))
		case expr.HeadExp:
			return finite(numeric.Exp(args[0], wp))
		default:
			return elementary(numeric.Log(args[0], wp))
		}
	}

	if !d.catalog.Has(c.Head()) {
		return nil, false, nil
	}
	v, err := d.evaluate(c.Head(), c.Args(), ctx.WithPrecision(wp).WithNumeric(true), depth+1)
	if err != nil {
		return nil, false, err
	}
	r, ok := v.Expr.(*expr.Real)
	if !ok {
		return nil, false, nil
	}
	return r.Big(), true, nil
}

// elementary maps domain errors of the elementary functions to "no real
// value" rather than failure.
func elementary(f *big.Float, err error) (*big.Float, bool, error) {
	if errors.Is(err, numeric.ErrDomain) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return finite(f)
}

func finite(f *big.Float) (*big.Float, bool, error) {
	if f == nil || f.IsInf() {
		return nil, false, nil
	}
	return f, true, nil
}
