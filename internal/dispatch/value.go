package dispatch

import "github.com/GriffinCanCode/specfn/internal/expr"

// Path names the dispatch step that produced a value.
type Path string

const (
	PathRule        Path = "rule"
	PathShape       Path = "shape"
	PathCustom      Path = "custom"
	PathSymbolic    Path = "symbolic"
	PathNumeric     Path = "numeric"
	PathUnevaluated Path = "unevaluated"
)

// Value is the outcome of an evaluation.
type Value struct {
	// Expr is the result, or the original call when nothing applied.
	Expr expr.Expr
	// Evaluated is false when Expr is the call returned unchanged.
	Evaluated bool
	// Reduced is set when a numeric result carries less precision than was
	// asked for.
	Reduced bool
	Path    Path
	// Diagnostic explains why a call stayed unevaluated, typically a
	// *DomainError. It is informational; evaluation itself succeeded.
	Diagnostic error
}

func unevaluated(call expr.Expr, diag error) Value {
	return Value{Expr: call, Path: PathUnevaluated, Diagnostic: diag}
}

// merge folds the flags of a sub-evaluation into v.
func (v *Value) merge(sub Value) {
	v.Reduced = v.Reduced || sub.Reduced
	if v.Diagnostic == nil {
		v.Diagnostic = sub.Diagnostic
	}
}
