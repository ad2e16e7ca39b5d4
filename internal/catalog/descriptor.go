package catalog

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/specfn/internal/expr"
	"github.com/GriffinCanCode/specfn/internal/precision"
)

var (
	// ErrUnknownFunction is returned for names missing from the catalog.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrInvalidDescriptor is returned for descriptors that cannot evaluate anything.
	ErrInvalidDescriptor = errors.New("invalid function descriptor")
	// ErrDuplicateFunction is returned when a name is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
)

// Kind tells how a descriptor is evaluated.
type Kind int

const (
	// Standard descriptors go through the backends by name.
	Standard Kind = iota
	// WithPreparation descriptors rewrite their arguments before dispatch.
	WithPreparation
	// Custom descriptors bypass the backends entirely.
	Custom
)

func (k Kind) String() string {
	switch k {
	case Standard:
		return "standard"
	case WithPreparation:
		return "prepared"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// Evaluator is the view of the dispatcher available to custom evaluators.
type Evaluator interface {
	// EvaluateCall evaluates name[args] and returns the resulting expression.
	EvaluateCall(name string, args []expr.Expr, ctx precision.Context) (expr.Expr, error)
	// WorkingPrecision returns the precision a numeric evaluation of args
	// would use under ctx.
	WorkingPrecision(args []expr.Expr, ctx precision.Context) uint
}

// PrepareFunc rewrites the raw argument list before dispatch. Call rules of
// a prepared function are matched against the prepared arguments, so they
// are written on the prepared form: Legendre[1, 0] -> 0, not Legendre[0] -> 0.
type PrepareFunc func(args []expr.Expr) []expr.Expr

// CustomFunc evaluates a call directly. It returns false when the call should
// stay unevaluated.
type CustomFunc func(ev Evaluator, args []expr.Expr, ctx precision.Context) (expr.Expr, bool, error)

// Descriptor describes how to evaluate one named function.
type Descriptor struct {
	Name         string
	SymbolicName string
	NumericName  string
	Prepare      PrepareFunc
	Custom       CustomFunc
}

// Kind reports the evaluation variant. A custom evaluator wins over argument
// preparation.
func (d Descriptor) Kind() Kind {
	switch {
	case d.Custom != nil:
		return Custom
	case d.Prepare != nil:
		return WithPreparation
	default:
		return Standard
	}
}

// Validate checks that the descriptor names something to evaluate with.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDescriptor)
	}
	if d.SymbolicName == "" && d.NumericName == "" && d.Custom == nil {
		return fmt.Errorf("%w: %s has no symbolic name, numeric name or custom evaluator", ErrInvalidDescriptor, d.Name)
	}
	return nil
}

// PrependArgs returns a PrepareFunc that inserts fixed leading arguments,
// e.g. the order of a one-argument surface over a two-argument primitive.
func PrependArgs(fixed ...expr.Expr) PrepareFunc {
	return func(args []expr.Expr) []expr.Expr {
		out := make([]expr.Expr, 0, len(fixed)+len(args))
		out = append(out, fixed...)
		return append(out, args...)
	}
}
