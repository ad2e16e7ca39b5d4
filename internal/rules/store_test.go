package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		ok      bool
		binds   map[string]string
	}{
		{"literal zero", "ProductLog[0]", "ProductLog[0]", true, nil},
		{"literal mismatch", "ProductLog[0]", "ProductLog[1]", false, nil},
		{"literal symbol", "ProductLog[E]", "ProductLog[E]", true, nil},
		{"blank binds", "F[x_]", "F[y + 1]", true, map[string]string{"x": "y + 1"}},
		{"repeated blank equal", "F[x_, x_]", "F[a, a]", true, map[string]string{"x": "a"}},
		{"repeated blank differs", "F[x_, x_]", "F[a, b]", false, nil},
		{"anonymous blank", "F[_, _]", "F[a, b]", true, nil},
		{"integer restriction", "Zeta[n_Integer]", "Zeta[4]", true, map[string]string{"n": "4"}},
		{"integer restriction rejects rational", "Zeta[n_Integer]", "Zeta[1/2]", false, nil},
		{"call head restriction", "F[x_Sin]", "F[Sin[y]]", true, map[string]string{"x": "Sin[y]"}},
		{"arity mismatch", "F[x_]", "F[a, b]", false, nil},
		{
			"defining equation",
			"ProductLog[z_] * E^ProductLog[z_]",
			"ProductLog[w] * E^ProductLog[w]",
			true, map[string]string{"z": "w"},
		},
		{
			"defining equation reordered",
			"ProductLog[z_] * E^ProductLog[z_]",
			"E^ProductLog[w] * ProductLog[w]",
			true, map[string]string{"z": "w"},
		},
		{
			"defining equation inconsistent",
			"ProductLog[z_] * E^ProductLog[z_]",
			"ProductLog[w] * E^ProductLog[v]",
			false, nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := Match(expr.MustParse(tt.pattern), expr.MustParse(tt.input))
			require.Equal(t, tt.ok, ok)
			for name, want := range tt.binds {
				got, found := b[name]
				require.True(t, found, "missing binding %s", name)
				assert.True(t, expr.Equal(expr.MustParse(want), got), "%s: want %s, got %s", name, want, got)
			}
		})
	}
}

func TestMatchOrderlessDoesNotLeakBindings(t *testing.T) {
	// The first assignment binds x to a and then fails on the second factor;
	// the retry must not see the stale binding.
	p := expr.MustParse("F[x_, G[x_]] * x_")
	e := expr.MustParse("F[b, G[b]] * a")
	_, ok := Match(p, e)
	assert.False(t, ok)

	e = expr.MustParse("a * F[a, G[a]]")
	b, ok := Match(p, e)
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Sym("a"), b["x"]))
}

func TestCompile(t *testing.T) {
	r, err := Compile("ProductLog", "ProductLog[0]", "0")
	require.NoError(t, err)
	assert.True(t, r.IsCallRule())
	assert.Equal(t, "ProductLog[0] -> 0", r.Source)

	r, err = Compile("ProductLog", "ProductLog[z_] * E^ProductLog[z_]", "z")
	require.NoError(t, err)
	assert.False(t, r.IsCallRule())
	assert.Equal(t, expr.HeadTimes, r.Head())

	_, err = Compile("F", "x_", "1")
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = Compile("F", "F[", "1")
	assert.ErrorIs(t, err, expr.ErrSyntax)

	_, err = Compile("F", "F[1]", "*")
	assert.ErrorIs(t, err, expr.ErrSyntax)
}

func TestStoreTryRewrite(t *testing.T) {
	s, err := NewStore(
		MustCompile("ProductLog", "ProductLog[0]", "0"),
		MustCompile("ProductLog", "ProductLog[E]", "1"),
		MustCompile("ProductLog", "ProductLog[z_] * E^ProductLog[z_]", "z"),
		MustCompile("F", "F[x_Integer]", "first"),
		MustCompile("F", "F[x_]", "second"),
	)
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Len(t, s.For("ProductLog"), 2)

	out, rule, ok := s.TryRewrite("ProductLog", []expr.Expr{expr.Int(0)})
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Int(0), out))
	assert.Equal(t, "ProductLog[0] -> 0", rule.Source)

	out, _, ok = s.TryRewrite("ProductLog", []expr.Expr{expr.Sym("E")})
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Int(1), out))

	_, _, ok = s.TryRewrite("ProductLog", []expr.Expr{expr.Sym("x")})
	assert.False(t, ok)

	// first match wins
	out, _, ok = s.TryRewrite("F", []expr.Expr{expr.Int(3)})
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Sym("first"), out))
	out, _, ok = s.TryRewrite("F", []expr.Expr{expr.Sym("y")})
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Sym("second"), out))

	_, _, ok = s.TryRewrite("Unknown", []expr.Expr{expr.Int(0)})
	assert.False(t, ok)
}

func TestStoreTryShape(t *testing.T) {
	s, err := NewStore(MustCompile("ProductLog", "ProductLog[z_] * E^ProductLog[z_]", "z"))
	require.NoError(t, err)

	out, rule, ok := s.TryShape(expr.MustParse("ProductLog[x + 1] * E^ProductLog[x + 1]"))
	require.True(t, ok)
	assert.Equal(t, "ProductLog", rule.Owner)
	assert.True(t, expr.Equal(expr.MustParse("x + 1"), out))

	_, _, ok = s.TryShape(expr.MustParse("ProductLog[x] * E^x"))
	assert.False(t, ok)

	_, _, ok = s.TryShape(expr.Sym("x"))
	assert.False(t, ok)
}

func TestStoreTryShapeInsideLongerProduct(t *testing.T) {
	s, err := NewStore(
		MustCompile("ProductLog", "ProductLog[z_] * E^ProductLog[z_]", "z"),
		MustCompile("Sin", "Sin[x_]^2 + Cos[x_]^2", "1"),
	)
	require.NoError(t, err)

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2 * ProductLog[z] * E^ProductLog[z]", "2*z", true},
		{"y * ProductLog[z] * E^ProductLog[z]", "y*z", true},
		{"ProductLog[z] * y * E^ProductLog[z] * w", "y*w*z", true},
		{"a + Sin[t]^2 + Cos[t]^2", "a + 1", true},
		{"2 * ProductLog[z] * E^ProductLog[w]", "", false},
		{"y * ProductLog[z]", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out, _, ok := s.TryShape(expr.MustParse(tt.input))
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, expr.Equal(expr.MustParse(tt.want), out), "got %s", out)
			}
		})
	}
}

func TestMatchFlatKeepsRestInOrder(t *testing.T) {
	b, rest, ok := MatchFlat(expr.MustParse("F[x_] * G[x_]"), expr.MustParse("a * G[u] * b * F[u]"))
	require.True(t, ok)
	assert.True(t, expr.Equal(expr.Sym("u"), b["x"]))
	require.Len(t, rest, 2)
	assert.True(t, expr.Equal(expr.Sym("a"), rest[0]))
	assert.True(t, expr.Equal(expr.Sym("b"), rest[1]))

	_, _, ok = MatchFlat(expr.MustParse("F[x_] * G[x_]"), expr.MustParse("F[u] * G[u]"))
	assert.False(t, ok, "equal lengths are left to Match")
}

func TestNewStoreRejectsIncompleteRules(t *testing.T) {
	_, err := NewStore(Rule{Owner: "F", Pattern: expr.MustParse("F[0]")})
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = NewStore(Rule{Owner: "F", Pattern: expr.Sym("x"), Result: expr.Int(1)})
	assert.ErrorIs(t, err, ErrInvalidRule)
}
