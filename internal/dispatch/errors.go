package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

var (
	// ErrRewriteDepth is returned when rewriting recurses past the configured
	// depth, which indicates a rule that rewrites to itself.
	ErrRewriteDepth = errors.New("rewrite depth exceeded")
	// ErrBackendPanic marks a backend call that panicked and was recovered.
	ErrBackendPanic = errors.New("backend panicked")
)

// DomainError reports a call the backends could not evaluate at its
// arguments: a pole, a branch cut, an overflow or a backend fault. The
// dispatcher does not return it as an error; it leaves the call unevaluated
// and attaches the DomainError as the value's diagnostic.
type DomainError struct {
	Function string
	Args     []expr.Expr
	Err      error
}

func (e *DomainError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]: %v", e.Function, strings.Join(parts, ", "), e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }
