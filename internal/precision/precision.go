// Package precision decides the working precision of numeric evaluation.
package precision

import (
	"github.com/GriffinCanCode/specfn/internal/expr"
)

// DefaultBits is the working precision used when nothing else decides it.
const DefaultBits = expr.MachinePrecision

// Context carries per-request evaluation settings. It is a value type:
// derivations return copies and the original is never modified.
type Context struct {
	requested uint
	numeric   bool
	id        string
}

// NewContext returns an empty context: no requested precision, exact mode.
func NewContext() Context { return Context{} }

// WithPrecision returns a derived context requesting bits of precision.
func (c Context) WithPrecision(bits uint) Context {
	c.requested = bits
	return c
}

// WithDigits returns a derived context requesting decimal digits of precision.
func (c Context) WithDigits(digits float64) Context {
	return c.WithPrecision(expr.DigitsToBits(digits))
}

// WithNumeric returns a derived context forcing numeric evaluation of exact
// arguments.
func (c Context) WithNumeric(numeric bool) Context {
	c.numeric = numeric
	return c
}

// WithID returns a derived context tagged with an evaluation id.
func (c Context) WithID(id string) Context {
	c.id = id
	return c
}

// Requested returns the requested precision and whether one was set.
func (c Context) Requested() (uint, bool) { return c.requested, c.requested > 0 }

// Numeric reports whether numeric evaluation is forced.
func (c Context) Numeric() bool { return c.numeric }

// ID returns the evaluation id, if any.
func (c Context) ID() string { return c.id }

// Tracker resolves working precision for numeric evaluation.
type Tracker struct {
	Default uint
	Max     uint
}

// NewTracker returns a tracker; zero values fall back to DefaultBits and no
// upper bound.
func NewTracker(def, max uint) Tracker {
	if def == 0 {
		def = DefaultBits
	}
	return Tracker{Default: def, Max: max}
}

// Resolve picks the working precision for a call: the requested precision
// when set, otherwise the highest precision among approximate arguments
// (nested ones included), otherwise the default. A result above Max is
// clamped and reported as reduced.
func (t Tracker) Resolve(args []expr.Expr, ctx Context) (bits uint, reduced bool) {
	if req, ok := ctx.Requested(); ok {
		bits = req
	} else {
		found := false
		for _, a := range args {
			if p, ok := expr.MaxPrecision(a); ok {
				found = true
				if p > bits {
					bits = p
				}
			}
		}
		if !found {
			bits = t.Default
			if bits == 0 {
				bits = DefaultBits
			}
		}
	}
	if t.Max > 0 && bits > t.Max {
		return t.Max, true
	}
	return bits, false
}
