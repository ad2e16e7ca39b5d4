package numeric

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
)

var (
	// ErrDomain marks arguments where the function is undefined: poles,
	// branch cuts, overflow.
	ErrDomain = errors.New("argument outside function domain")
	// ErrUnsupported marks functions or argument classes a backend does not
	// implement.
	ErrUnsupported = errors.New("numeric function not supported")
)

// PrecisionError reports a request for more precision than a backend can
// deliver for a function. Callers may retry at Supported bits.
type PrecisionError struct {
	Function  string
	Requested uint
	Supported uint
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("%s: %d bits of precision not supported, maximum %d", e.Function, e.Requested, e.Supported)
}

// Backend evaluates named functions at a requested precision in bits.
// Implementations must be safe for concurrent use or be wrapped with
// Serialized.
type Backend interface {
	Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error)
}

// Tiered routes requests at or below Threshold bits to Low and the rest to
// High.
type Tiered struct {
	Low       Backend
	High      Backend
	Threshold uint
}

// NewTiered returns the standard backend: float64 arithmetic for machine
// precision, math/big above it.
func NewTiered() *Tiered {
	return &Tiered{Low: NewFloat64(), High: NewBig(), Threshold: MachineBits}
}

// Evaluate implements Backend.
func (t *Tiered) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	if prec <= t.Threshold {
		return t.Low.Evaluate(name, args, prec)
	}
	return t.High.Evaluate(name, args, prec)
}

type serialized struct {
	mu sync.Mutex
	b  Backend
}

// Serialized wraps a backend that is not safe for concurrent use so that
// calls run one at a time.
func Serialized(b Backend) Backend { return &serialized{b: b} }

func (s *serialized) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Evaluate(name, args, prec)
}

func checkArity(name string, args []*big.Float, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrUnsupported, name, n, len(args))
	}
	return nil
}

// validateNumber rejects NaN and infinite results.
func validateNumber(name string, x float64) error {
	if math.IsNaN(x) {
		return fmt.Errorf("%w: %s is undefined here", ErrDomain, name)
	}
	if math.IsInf(x, 0) {
		return fmt.Errorf("%w: %s overflows or has a pole here", ErrDomain, name)
	}
	return nil
}
