package symbolic

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

func TestSimplify(t *testing.T) {
	cf := NewClosedForms()

	tests := []struct {
		name string
		fn   string
		args []string
		want string
	}{
		{"erf zero", "erf", []string{"0"}, "0"},
		{"erf infinity", "erf", []string{"Infinity"}, "1"},
		{"erf minus infinity", "erf", []string{"-Infinity"}, "-1"},
		{"lambertw zero", "LambertW", []string{"0"}, "0"},
		{"lambertw e", "LambertW", []string{"E"}, "1"},
		{"lambertw branch point", "LambertW", []string{"-1/E"}, "-1"},
		{"lambertw of a e^a", "LambertW", []string{"2*E^2"}, "2"},
		{"zeta zero", "zeta", []string{"0"}, "-1/2"},
		{"zeta pole", "zeta", []string{"1"}, "ComplexInfinity"},
		{"zeta two", "zeta", []string{"2"}, "Pi^2/6"},
		{"zeta four", "zeta", []string{"4"}, "Pi^4/90"},
		{"zeta minus one", "zeta", []string{"-1"}, "-1/12"},
		{"zeta minus three", "zeta", []string{"-3"}, "1/120"},
		{"zeta trivial zero", "zeta", []string{"-2"}, "0"},
		{"besselj half", "besselj", []string{"1/2", "x"}, "(2/Pi)^(1/2) * Sin[x] * x^(-1/2)"},
		{"besselj minus half", "besselj", []string{"-1/2", "x"}, "(2/Pi)^(1/2) * Cos[x] * x^(-1/2)"},
		{"besselj zero at zero", "besselj", []string{"0", "0"}, "1"},
		{"besselj order at zero", "besselj", []string{"3", "0"}, "0"},
		{"bessely half", "bessely", []string{"1/2", "x"}, "-(2/Pi)^(1/2) * Cos[x] * x^(-1/2)"},
		{"legendre one", "legendre", []string{"1", "z"}, "z"},
		{"legendre two", "legendre", []string{"2", "z"}, "3/2*z^2 - 1/2"},
		{"legendre exact value", "legendre", []string{"3", "1/2"}, "-7/16"},
		{"legendre negative degree", "legendre", []string{"-3", "z"}, "3/2*z^2 - 1/2"},
		{"gamma integer", "gamma", []string{"5"}, "24"},
		{"gamma pole", "gamma", []string{"0"}, "ComplexInfinity"},
		{"gamma half", "gamma", []string{"1/2"}, "Pi^(1/2)"},
		{"gamma three halves", "gamma", []string{"3/2"}, "1/2*Pi^(1/2)"},
		{"gamma minus half", "gamma", []string{"-1/2"}, "-2*Pi^(1/2)"},
		{"gamma minus three halves", "gamma", []string{"-3/2"}, "4/3*Pi^(1/2)"},
		{"loggamma one", "loggamma", []string{"1"}, "0"},
		{"loggamma two", "loggamma", []string{"2"}, "0"},
		{"loggamma four", "loggamma", []string{"4"}, "Log[6]"},
		{"beta", "beta", []string{"2", "3"}, "1/12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]expr.Expr, len(tt.args))
			for i, a := range tt.args {
				args[i] = expr.MustParse(a)
			}
			got, ok := cf.Simplify(tt.fn, args)
			require.True(t, ok)
			want := expr.MustParse(tt.want)
			assert.True(t, expr.Equal(want, got), "want %s, got %s", want, got)
		})
	}
}

func TestSimplifyDeclines(t *testing.T) {
	cf := NewClosedForms()

	tests := []struct {
		name string
		fn   string
		args []string
	}{
		{"erf symbol", "erf", []string{"x"}},
		{"erf real", "erf", []string{"1.0"}},
		{"lambertw symbol", "LambertW", []string{"x"}},
		{"lambertw below branch", "LambertW", []string{"-2*E^(-2)"}},
		{"zeta odd", "zeta", []string{"3"}},
		{"zeta rational", "zeta", []string{"1/2"}},
		{"besselj integer order", "besselj", []string{"1", "x"}},
		{"legendre symbolic degree", "legendre", []string{"n", "z"}},
		{"legendre degree too large", "legendre", []string{"65", "z"}},
		{"gamma symbol", "gamma", []string{"x"}},
		{"gamma third", "gamma", []string{"1/3"}},
		{"beta non-positive", "beta", []string{"0", "2"}},
		{"unknown function", "nosuch", []string{"0"}},
		{"wrong arity", "erf", []string{"0", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]expr.Expr, len(tt.args))
			for i, a := range tt.args {
				args[i] = expr.MustParse(a)
			}
			_, ok := cf.Simplify(tt.fn, args)
			assert.False(t, ok)
		})
	}
}

func TestBernoulli(t *testing.T) {
	want := map[int]*big.Rat{
		0:  big.NewRat(1, 1),
		1:  big.NewRat(1, 2),
		2:  big.NewRat(1, 6),
		3:  new(big.Rat),
		4:  big.NewRat(-1, 30),
		12: big.NewRat(-691, 2730),
	}
	for n, w := range want {
		b, ok := Bernoulli(n)
		require.True(t, ok)
		assert.Equal(t, 0, w.Cmp(b), "B_%d = %s", n, b.RatString())
	}

	_, ok := Bernoulli(-1)
	assert.False(t, ok)
	_, ok = Bernoulli(maxBernoulli + 1)
	assert.False(t, ok)

	// callers get a copy
	b, _ := Bernoulli(2)
	b.SetInt64(7)
	b, _ = Bernoulli(2)
	assert.Equal(t, 0, big.NewRat(1, 6).Cmp(b))
}

func TestLegendreMatchesRecurrenceAtOne(t *testing.T) {
	cf := NewClosedForms()
	for n := int64(0); n <= maxLegendreDegree; n++ {
		got, ok := cf.Simplify("legendre", []expr.Expr{expr.Int(n), expr.Int(1)})
		require.True(t, ok)
		assert.True(t, expr.Equal(expr.Int(1), got), "P_%d(1) = %s", n, got)
	}
}
