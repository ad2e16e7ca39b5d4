// Package testutil provides testing utilities and helpers for backend tests.
package testutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

// MockNumeric is a mock numeric backend.
type MockNumeric struct {
	mock.Mock
}

// Evaluate mocks the Evaluate method.
func (m *MockNumeric) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	ret := m.Called(name, args, prec)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*big.Float), ret.Error(1)
}

// MockSymbolic is a mock symbolic backend.
type MockSymbolic struct {
	mock.Mock
}

// Simplify mocks the Simplify method.
func (m *MockSymbolic) Simplify(name string, args []expr.Expr) (expr.Expr, bool) {
	ret := m.Called(name, args)
	if ret.Get(0) == nil {
		return nil, ret.Bool(1)
	}
	return ret.Get(0).(expr.Expr), ret.Bool(1)
}

// Real returns v as a Real of prec bits.
func Real(prec uint, v float64) *expr.Real {
	return expr.Float(BigFloat(prec, v))
}

// BigFloat returns v as a big.Float of prec bits.
func BigFloat(prec uint, v float64) *big.Float {
	return new(big.Float).SetPrec(prec).SetFloat64(v)
}

// RequireReal fails the test unless e is a Real and returns it.
func RequireReal(t testing.TB, e expr.Expr) *expr.Real {
	t.Helper()
	r, ok := e.(*expr.Real)
	require.True(t, ok, "expected a real, got %s", e)
	return r
}

// FloatArgs matches numeric backend arguments approximately equal to want.
func FloatArgs(want ...float64) any {
	return mock.MatchedBy(func(args []*big.Float) bool {
		if len(args) != len(want) {
			return false
		}
		for i, a := range args {
			f, _ := a.Float64()
			d := f - want[i]
			if d < -1e-15 || d > 1e-15 {
				return false
			}
		}
		return true
	})
}
