package dispatch

import (
	"fmt"

	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/precision"
)

func (d *Dispatcher) evalExpr(e expr.Expr, ctx precision.Context, depth int) (Value, error) {
	if depth > d.maxDepth {
		return Value{}, fmt.Errorf("%w: %d levels evaluating %s", ErrRewriteDepth, d.maxDepth, e)
	}
	c, ok := e.(*expr.Call)
	if !ok {
		return d.evalAtom(e, ctx, depth)
	}

	// Arguments of catalog calls stay exact so the call can reach its
	// closed form; dispatch applies the numeric context itself.
	catalogHead := d.catalog.Has(c.Head())
	actx := ctx
	if catalogHead {
		actx = ctx.WithNumeric(false)
	}

	out := Value{Path: PathUnevaluated}
	args := make([]expr.Expr, c.Len())
	for i := range args {
		v, err := d.evalExpr(c.Arg(i), actx, depth)
		if err != nil {
			return Value{}, err
		}
		args[i] = v.Expr
		out.merge(v)
		if v.Evaluated && !out.Evaluated {
			out.Evaluated = true
			out.Path = v.Path
		}
	}

	if catalogHead {
		v, err := d.evaluate(c.Head(), args, ctx, depth)
		if err != nil {
			return Value{}, err
		}
		out.merge(v)
		if v.Evaluated || !out.Evaluated {
			out.Path = v.Path
		}
		out.Evaluated = out.Evaluated || v.Evaluated
		out.Expr = v.Expr
		return out, nil
	}

	rebuilt := expr.Rebuild(c.Head(), args)
	if shaped, rule, ok := d.catalog.Rules().TryShape(rebuilt); ok {
		d.metrics.RecordRewrite(rule.Owner, "shape")
		v, err := d.evalExpr(shaped, ctx, depth+1)
		if err != nil {
			return Value{}, err
		}
		out.merge(v)
		out.Expr = v.Expr
		out.Evaluated = true
		out.Path = PathShape
		return out, nil
	}

	if truth, ok := compare(rebuilt); ok {
		out.Expr = truth
		out.Evaluated = true
		out.Path = PathSymbolic
		return out, nil
	}

	if ctx.Numeric() {
		bits, reduced := d.tracker.Resolve([]expr.Expr{rebuilt}, ctx)
		f, ok, err := d.coerce(rebuilt, bits, ctx, depth)
		if err != nil {
			return Value{}, err
		}
		if ok {
			out.Expr = expr.Float(f)
			out.Reduced = out.Reduced || reduced
			out.Evaluated = true
			if out.Path == PathUnevaluated {
				out.Path = PathNumeric
			}
			return out, nil
		}
	}

	out.Expr = rebuilt
	return out, nil
}

// evalAtom numericizes exact numbers and named constants under a numeric
// context and returns every other atom as is.
func (d *Dispatcher) evalAtom(e expr.Expr, ctx precision.Context, depth int) (Value, error) {
	if !ctx.Numeric() {
		return Value{Expr: e, Path: PathUnevaluated}, nil
	}
	if _, isReal := e.(*expr.Real); isReal {
		return Value{Expr: e, Path: PathUnevaluated}, nil
	}
	bits, reduced := d.tracker.Resolve(nil, ctx)
	f, ok, err := d.coerce(e, bits, ctx, depth)
	if err != nil || !ok {
		return Value{Expr: e, Path: PathUnevaluated}, err
	}
	return Value{Expr: expr.Float(f), Evaluated: true, Reduced: reduced, Path: PathNumeric}, nil
}

// compare decides a == b: True when both sides are structurally equal, False
// when they are distinct exact numbers. Anything else stays unevaluated.
func compare(e expr.Expr) (expr.Expr, bool) {
	c, ok := e.(*expr.Call)
	if !ok || c.Head() != expr.HeadEqual || c.Len() != 2 {
		return nil, false
	}
	lhs, rhs := c.Arg(0), c.Arg(1)
	if expr.Equal(lhs, rhs) {
		return expr.Sym(expr.SymTrue), true
	}
	a, aok := expr.ExactRat(lhs)
	b, bok := expr.ExactRat(rhs)
	if aok && bok && a.Cmp(b) != 0 {
		return expr.Sym(expr.SymFalse), true
	}
	return nil, false
}
