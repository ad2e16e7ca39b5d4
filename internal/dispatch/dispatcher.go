package dispatch

import (
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/specfn/internal/catalog"
	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/specfn/internal/logging"
	"github.com/GriffinCanCode/specfn/internal/numeric"
	"github.com/GriffinCanCode/specfn/internal/precision"
	"github.com/GriffinCanCode/specfn/internal/symbolic"
)

// DefaultMaxDepth bounds nested rewriting and re-evaluation.
const DefaultMaxDepth = 64

// Dispatcher routes calls of catalog functions to rules, custom evaluators
// and backends. It holds no mutable state and is safe for concurrent use as
// long as its backends are.
type Dispatcher struct {
	catalog  *catalog.Catalog
	symbolic symbolic.Backend
	numeric  numeric.Backend
	tracker  precision.Tracker
	maxDepth int
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l.Named("dispatch")
		}
	}
}

// WithMetrics records evaluations and backend calls.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithTracker sets the precision policy.
func WithTracker(t precision.Tracker) Option {
	return func(d *Dispatcher) { d.tracker = t }
}

// WithMaxDepth sets the rewrite depth limit.
func WithMaxDepth(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// WithSerializedNumeric funnels numeric backend calls through a mutex, for
// backends that are not safe for concurrent use.
func WithSerializedNumeric() Option {
	return func(d *Dispatcher) {
		if d.numeric != nil {
			d.numeric = numeric.Serialized(d.numeric)
		}
	}
}

// New creates a dispatcher over cat. Either backend may be nil, in which
// case the corresponding step is skipped.
func New(cat *catalog.Catalog, sym symbolic.Backend, num numeric.Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		catalog:  cat,
		symbolic: sym,
		numeric:  num,
		tracker:  precision.NewTracker(0, 0),
		maxDepth: DefaultMaxDepth,
		log:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the function catalog.
func (d *Dispatcher) Catalog() *catalog.Catalog { return d.catalog }

// Evaluate evaluates name[args...]. The arguments are taken as given; use
// EvaluateExpr to evaluate nested calls first.
func (d *Dispatcher) Evaluate(name string, args []expr.Expr, ctx precision.Context) (Value, error) {
	return d.evaluate(name, args, ctx, 0)
}

// EvaluateExpr evaluates every catalog call in e bottom up and applies shape
// rules to the rebuilt expressions.
func (d *Dispatcher) EvaluateExpr(e expr.Expr, ctx precision.Context) (Value, error) {
	return d.evalExpr(e, ctx, 0)
}

func (d *Dispatcher) evaluate(name string, args []expr.Expr, ctx precision.Context, depth int) (Value, error) {
	if depth > d.maxDepth {
		return Value{}, fmt.Errorf("%w: %d levels evaluating %s", ErrRewriteDepth, d.maxDepth, name)
	}
	desc, err := d.catalog.Lookup(name)
	if err != nil {
		return Value{}, err
	}

	v, err := d.dispatch(desc, args, ctx, depth)
	if err != nil {
		return Value{}, err
	}

	log := d.log.ForEval(ctx.ID())
	log.Debug("evaluated",
		zap.String("function", name),
		zap.String("path", string(v.Path)),
		zap.Bool("reduced", v.Reduced),
		zap.Int("depth", depth),
	)
	d.metrics.RecordEvaluation(name, string(v.Path))
	if v.Reduced {
		d.metrics.RecordReduced(name)
	}
	var de *DomainError
	if v.Path == PathUnevaluated && errors.As(v.Diagnostic, &de) && de.Function == name {
		d.metrics.RecordDomainError(name)
		log.Debug("domain error", zap.String("function", name), zap.Error(de.Err))
	}
	return v, nil
}

func (d *Dispatcher) dispatch(desc catalog.Descriptor, args []expr.Expr, ctx precision.Context, depth int) (Value, error) {
	call := expr.NewCall(desc.Name, args...)

	prepared := args
	if desc.Prepare != nil {
		prepared = desc.Prepare(args)
	}

	if out, rule, ok := d.catalog.Rules().TryRewrite(desc.Name, prepared); ok {
		d.metrics.RecordRewrite(rule.Owner, "call")
		v, err := d.evalExpr(out, ctx, depth+1)
		if err != nil {
			return Value{}, err
		}
		v.Evaluated = true
		v.Path = PathRule
		return v, nil
	}

	if desc.Custom != nil {
		return d.custom(desc, call, prepared, ctx, depth)
	}

	exact := true
	for _, a := range prepared {
		if expr.ContainsReal(a) {
			exact = false
			break
		}
	}

	if exact && desc.SymbolicName != "" && d.symbolic != nil {
		out, ok, err := d.simplify(desc.SymbolicName, prepared)
		if err != nil {
			return unevaluated(call, &DomainError{Function: desc.Name, Args: args, Err: err}), nil
		}
		if ok {
			v := Value{Expr: out, Evaluated: true, Path: PathSymbolic}
			if ctx.Numeric() {
				bits, reduced := d.tracker.Resolve(prepared, ctx)
				if f, ok, err := d.coerce(out, bits, ctx, depth); err != nil {
					return Value{}, err
				} else if ok {
					v.Expr = expr.Float(f)
					v.Reduced = reduced
				}
			}
			return v, nil
		}
	}

	// Exact input only becomes approximate when the caller asked for it.
	if desc.NumericName == "" || d.numeric == nil || (exact && !ctx.Numeric()) {
		return unevaluated(call, nil), nil
	}
	return d.numericPath(desc, call, prepared, ctx, depth)
}

func (d *Dispatcher) custom(desc catalog.Descriptor, call *expr.Call, args []expr.Expr, ctx precision.Context, depth int) (v Value, err error) {
	cb := &callback{d: d, depth: depth}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("recovered custom evaluator panic", zap.String("function", desc.Name), zap.Any("panic", r))
			v, err = unevaluated(call, &DomainError{Function: desc.Name, Args: call.Args(), Err: fmt.Errorf("%w: %v", ErrBackendPanic, r)}), nil
		}
	}()

	out, ok, cerr := desc.Custom(cb, args, ctx)
	if cerr != nil {
		if errors.Is(cerr, catalog.ErrUnknownFunction) || errors.Is(cerr, ErrRewriteDepth) {
			return Value{}, cerr
		}
		return unevaluated(call, &DomainError{Function: desc.Name, Args: call.Args(), Err: cerr}), nil
	}
	if !ok {
		return Value{Expr: call, Path: PathUnevaluated, Reduced: cb.reduced, Diagnostic: cb.diagnostic}, nil
	}
	return Value{Expr: out, Evaluated: true, Path: PathCustom, Reduced: cb.reduced}, nil
}

func (d *Dispatcher) simplify(name string, args []expr.Expr) (out expr.Expr, ok bool, err error) {
	timer := monitoring.NewTimer(d.metrics, "symbolic", name)
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("recovered symbolic backend panic", zap.String("function", name), zap.Any("panic", r))
			out, ok, err = nil, false, fmt.Errorf("%w: %v", ErrBackendPanic, r)
		}
		timer.Stop(callStatus(ok, err))
	}()
	out, ok = d.symbolic.Simplify(name, args)
	return out, ok, nil
}

func (d *Dispatcher) numericPath(desc catalog.Descriptor, call *expr.Call, args []expr.Expr, ctx precision.Context, depth int) (Value, error) {
	bits, reduced := d.tracker.Resolve(args, ctx)

	nctx := ctx.WithNumeric(true)
	fargs := make([]*big.Float, len(args))
	for i, a := range args {
		f, ok, err := d.coerce(a, bits, nctx, depth)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return unevaluated(call, nil), nil
		}
		fargs[i] = f
	}

	used := bits
	res, err := d.callNumeric(desc.NumericName, fargs, bits)
	var pe *numeric.PrecisionError
	if errors.As(err, &pe) && pe.Supported > 0 && pe.Supported < bits {
		d.log.ForEval(ctx.ID()).Debug("retrying at supported precision",
			zap.String("function", desc.Name),
			zap.Uint("requested", bits),
			zap.Uint("supported", pe.Supported),
		)
		used = pe.Supported
		reduced = true
		res, err = d.callNumeric(desc.NumericName, fargs, used)
	}
	if err != nil {
		return unevaluated(call, &DomainError{Function: desc.Name, Args: call.Args(), Err: err}), nil
	}
	if res.Prec() != used {
		res = new(big.Float).SetPrec(used).Set(res)
	}
	return Value{Expr: expr.Float(res), Evaluated: true, Reduced: reduced, Path: PathNumeric}, nil
}

func (d *Dispatcher) callNumeric(name string, args []*big.Float, bits uint) (res *big.Float, err error) {
	timer := monitoring.NewTimer(d.metrics, "numeric", name)
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("recovered numeric backend panic", zap.String("function", name), zap.Any("panic", r))
			res, err = nil, fmt.Errorf("%w: %v", ErrBackendPanic, r)
		}
		timer.Stop(callStatus(err == nil, err))
	}()
	res, err = d.numeric.Evaluate(name, args, bits)
	if err == nil && (res == nil || res.IsInf()) {
		res, err = nil, fmt.Errorf("%w: %s returned no finite value", numeric.ErrDomain, name)
	}
	return res, err
}

func callStatus(ok bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case ok:
		return "success"
	default:
		return "declined"
	}
}

// callback is the catalog.Evaluator handed to custom evaluators. It carries
// the current depth so nested calls count against the rewrite limit.
type callback struct {
	d          *Dispatcher
	depth      int
	reduced    bool
	diagnostic error
}

func (c *callback) EvaluateCall(name string, args []expr.Expr, ctx precision.Context) (expr.Expr, error) {
	v, err := c.d.evaluate(name, args, ctx, c.depth+1)
	if err != nil {
		return nil, err
	}
	c.reduced = c.reduced || v.Reduced
	if c.diagnostic == nil {
		c.diagnostic = v.Diagnostic
	}
	return v.Expr, nil
}

func (c *callback) WorkingPrecision(args []expr.Expr, ctx precision.Context) uint {
	bits, reduced := c.d.tracker.Resolve(args, ctx)
	c.reduced = c.reduced || reduced
	return bits
}

// WorkingPrecision resolves the precision a numeric evaluation of args would
// run at.
func (d *Dispatcher) WorkingPrecision(args []expr.Expr, ctx precision.Context) uint {
	bits, _ := d.tracker.Resolve(args, ctx)
	return bits
}

// EvaluateCall evaluates name[args...] and returns only the expression.
// Together with WorkingPrecision it makes the Dispatcher a catalog.Evaluator.
func (d *Dispatcher) EvaluateCall(name string, args []expr.Expr, ctx precision.Context) (expr.Expr, error) {
	v, err := d.Evaluate(name, args, ctx)
	if err != nil {
		return nil, err
	}
	return v.Expr, nil
}

var _ catalog.Evaluator = (*Dispatcher)(nil)
