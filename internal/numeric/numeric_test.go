package numeric

import (
	"errors"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func floats(xs ...float64) []*big.Float {
	out := make([]*big.Float, len(xs))
	for i, x := range xs {
		out[i] = big.NewFloat(x)
	}
	return out
}

// assertClose checks that got agrees with the decimal want to within a few
// units in the last place of want or of bits, whichever is coarser.
func assertClose(t *testing.T, want string, got *big.Float, bits uint) {
	t.Helper()
	w, _, err := big.ParseFloat(want, 10, bits+16, big.ToNearestEven)
	require.NoError(t, err)
	diff := new(big.Float).SetPrec(bits + 16).Sub(w, got)
	if diff.Sign() == 0 {
		return
	}
	good := bits
	if d := uint(float64(significantDigits(want)-1) * math.Log2(10)); d < good {
		good = d
	}
	tol := new(big.Float).SetMantExp(big.NewFloat(1), w.MantExp(nil)-int(good)+4)
	assert.True(t, diff.Abs(diff).Cmp(tol) <= 0, "want %s, got %s", want, got.Text('g', int(bits/3)))
}

func significantDigits(s string) int {
	n, leading := 0, true
	for _, r := range s {
		switch {
		case r == '0' && leading:
		case r >= '0' && r <= '9':
			leading = false
			n++
		}
	}
	return n
}

func TestFloat64Values(t *testing.T) {
	b := NewFloat64()

	tests := []struct {
		name string
		fn   string
		args []float64
		want float64
	}{
		{"erf one", "erf", []float64{1}, 0.8427007929497149},
		{"erfc one", "erfc", []float64{1}, 0.15729920705028513},
		{"erfinv half", "erfinv", []float64{0.5}, 0.4769362762044699},
		{"omega constant", "lambertw", []float64{1}, 0.5671432904097838},
		{"lambertw e", "lambertw", []float64{math.E}, 1},
		{"lambertw near branch", "lambertw", []float64{-0.3}, -0.4894022271802149},
		{"zeta two", "zeta", []float64{2}, math.Pi * math.Pi / 6},
		{"zeta half", "zeta", []float64{0.5}, -1.4603545088095868},
		{"zeta zero", "zeta", []float64{0}, -0.5},
		{"zeta minus one", "zeta", []float64{-1}, -1.0 / 12},
		{"zeta trivial zero", "zeta", []float64{-4}, 0},
		{"gamma five", "gamma", []float64{5}, 24},
		{"gamma half", "gamma", []float64{0.5}, math.Sqrt(math.Pi)},
		{"loggamma ten", "loggamma", []float64{10}, math.Log(362880)},
		{"beta", "beta", []float64{2, 3}, 1.0 / 12},
		{"besselj integer", "besselj", []float64{0, 1}, 0.7651976865579666},
		{"besselj half order", "besselj", []float64{0.5, 2}, math.Sqrt(2/(math.Pi*2)) * math.Sin(2)},
		{"besselj half order large x", "besselj", []float64{0.5, 30}, math.Sqrt(2/(math.Pi*30)) * math.Sin(30)},
		{"bessely integer", "bessely", []float64{0, 1}, 0.08825696421567696},
		{"bessely half order", "bessely", []float64{0.5, 2}, -math.Sqrt(2/(math.Pi*2)) * math.Cos(2)},
		{"legendre two", "legendre", []float64{2, 0.5}, -0.125},
		{"legendre negative degree", "legendre", []float64{-3, 0.5}, -0.125},
		{"legendre zero", "legendre", []float64{0, 0.3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := b.Evaluate(tt.fn, floats(tt.args...), MachineBits)
			require.NoError(t, err)
			got, _ := v.Float64()
			assert.InDelta(t, tt.want, got, 1e-13*math.Max(1, math.Abs(tt.want)))
		})
	}
}

func TestFloat64DomainErrors(t *testing.T) {
	b := NewFloat64()

	tests := []struct {
		name string
		fn   string
		args []float64
	}{
		{"zeta pole", "zeta", []float64{1}},
		{"gamma pole", "gamma", []float64{0}},
		{"gamma negative pole", "gamma", []float64{-2}},
		{"loggamma of negative gamma", "loggamma", []float64{-0.5}},
		{"lambertw below branch", "lambertw", []float64{-1}},
		{"bessely at zero", "bessely", []float64{0, 0}},
		{"besselj complex", "besselj", []float64{0.5, -1}},
		{"erfinv at one", "erfinv", []float64{1}},
		{"erfinv outside", "erfinv", []float64{2}},
		{"infinite argument", "erf", []float64{math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Evaluate(tt.fn, floats(tt.args...), MachineBits)
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestFloat64Limits(t *testing.T) {
	b := NewFloat64()

	_, err := b.Evaluate("erf", floats(1), 100)
	var pe *PrecisionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, uint(100), pe.Requested)
	assert.Equal(t, uint(MachineBits), pe.Supported)

	_, err = b.Evaluate("nosuch", floats(1), MachineBits)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = b.Evaluate("erf", floats(1, 2), MachineBits)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = b.Evaluate("legendre", floats(1.5, 0.2), MachineBits)
	assert.ErrorIs(t, err, ErrUnsupported)

	// lower precision rounds the result
	v, err := b.Evaluate("erf", floats(1), 24)
	require.NoError(t, err)
	assert.Equal(t, uint(24), v.Prec())
}

func TestBigValues(t *testing.T) {
	b := NewBig()
	const bits = 200

	tests := []struct {
		name string
		fn   string
		args []float64
		want string
	}{
		{"erf one", "erf", []float64{1}, "0.842700792949714869341220635082609"},
		{"erf negative", "erf", []float64{-0.5}, "-0.52049987781304653768"},
		{"erf saturates", "erf", []float64{30}, "1"},
		{"omega constant", "lambertw", []float64{1}, "0.5671432904097838729999686622103"},
		{"zeta two", "zeta", []float64{2}, "1.6449340668482264364724151666460"},
		{"zeta three", "zeta", []float64{3}, "1.2020569031595942853997381615114"},
		{"zeta half", "zeta", []float64{0.5}, "-1.46035450880958681288949915251529"},
		{"besselj zero order", "besselj", []float64{0, 1}, "0.7651976865579665514497175261"},
		{"besselj second order", "besselj", []float64{2, 3}, "0.486091260585891"},
		{"besselj odd negative order", "besselj", []float64{-1, 1}, "-0.44005058574493351595968220371891"},
		{"legendre", "legendre", []float64{3, 0.5}, "-0.4375"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]*big.Float, len(tt.args))
			for i, a := range tt.args {
				args[i] = new(big.Float).SetPrec(bits).SetFloat64(a)
			}
			v, err := b.Evaluate(tt.fn, args, bits)
			require.NoError(t, err)
			assert.Equal(t, uint(bits), v.Prec())
			assertClose(t, tt.want, v, bits)
		})
	}
}

func TestBigAgreesWithFloat64(t *testing.T) {
	lo, hi := NewFloat64(), NewBig()

	cases := []struct {
		fn   string
		args []float64
	}{
		{"erf", []float64{0.3}},
		{"erf", []float64{2.5}},
		{"lambertw", []float64{-0.2}},
		{"lambertw", []float64{50}},
		{"zeta", []float64{2.5}},
		{"zeta", []float64{0.75}},
		{"besselj", []float64{3, 7.5}},
		{"legendre", []float64{7, -0.3}},
	}
	for _, c := range cases {
		a, err := lo.Evaluate(c.fn, floats(c.args...), MachineBits)
		require.NoError(t, err, c.fn)
		b, err := hi.Evaluate(c.fn, floats(c.args...), MachineBits)
		require.NoError(t, err, c.fn)
		af, _ := a.Float64()
		bf, _ := b.Float64()
		assert.InDelta(t, af, bf, 1e-13*math.Max(1, math.Abs(af)), "%s%v", c.fn, c.args)
	}
}

func TestBigLimits(t *testing.T) {
	b := NewBig()

	for _, fn := range []string{"gamma", "erfc", "beta"} {
		args := floats(2)
		if fn == "beta" {
			args = floats(2, 3)
		}
		_, err := b.Evaluate(fn, args, 200)
		var pe *PrecisionError
		require.True(t, errors.As(err, &pe), fn)
		assert.Equal(t, fn, pe.Function)
		assert.Equal(t, uint(MachineBits), pe.Supported)
	}

	_, err := b.Evaluate("zeta", floats(-3), 200)
	var pe *PrecisionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "zeta", pe.Function)

	_, err = b.Evaluate("besselj", floats(0.5, 1), 200)
	assert.True(t, errors.As(err, &pe))

	_, err = b.Evaluate("zeta", floats(1), 200)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = b.Evaluate("lambertw", floats(-1), 200)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = b.Evaluate("nosuch", floats(1), 200)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestConstants(t *testing.T) {
	const bits = 256
	assertClose(t, "3.1415926535897932384626433832795028841971693993751058209749445923078164", Pi(bits), bits)
	assertClose(t, "2.7182818284590452353602874713526624977572470936999595749669676277240766", E(bits), bits)
	assertClose(t, "1.6180339887498948482045868343656381177203091798057628621354486227052604", GoldenRatio(bits), bits)
	assert.Equal(t, uint(bits), Pi(bits).Prec())
}

func TestElementary(t *testing.T) {
	const bits = 128
	two := big.NewFloat(2)

	v, err := Pow(two, big.NewFloat(0.5), bits)
	require.NoError(t, err)
	assertClose(t, "1.4142135623730950488016887242096980785696718753769480731766797", v, bits)

	v, err = Pow(big.NewFloat(-2), big.NewFloat(3), bits)
	require.NoError(t, err)
	assertClose(t, "-8", v, bits)

	_, err = Pow(big.NewFloat(-2), big.NewFloat(0.5), bits)
	assert.ErrorIs(t, err, ErrDomain)
	_, err = Pow(new(big.Float), big.NewFloat(-1), bits)
	assert.ErrorIs(t, err, ErrDomain)

	v, err = Log(E(bits+10), bits)
	require.NoError(t, err)
	assertClose(t, "1", v, bits)
	_, err = Log(new(big.Float), bits)
	assert.ErrorIs(t, err, ErrDomain)

	_, err = Sqrt(big.NewFloat(-1), bits)
	assert.ErrorIs(t, err, ErrDomain)

	assertClose(t, "7.3890560989306502272304274605750078131803155705518473240871278", Exp(two, bits), bits)
}

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	ret := m.Called(name, args, prec)
	v, _ := ret.Get(0).(*big.Float)
	return v, ret.Error(1)
}

func TestTieredRoutesByPrecision(t *testing.T) {
	low, high := new(mockBackend), new(mockBackend)
	tiered := &Tiered{Low: low, High: high, Threshold: MachineBits}
	args := floats(1)

	low.On("Evaluate", "erf", args, uint(53)).Return(big.NewFloat(1), nil).Once()
	high.On("Evaluate", "erf", args, uint(54)).Return(big.NewFloat(2), nil).Once()

	v, err := tiered.Evaluate("erf", args, 53)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(1)))

	v, err = tiered.Evaluate("erf", args, 54)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewFloat(2)))

	low.AssertExpectations(t)
	high.AssertExpectations(t)
}

type countingBackend struct {
	active, peak int32
}

func (c *countingBackend) Evaluate(string, []*big.Float, uint) (*big.Float, error) {
	n := atomic.AddInt32(&c.active, 1)
	for {
		p := atomic.LoadInt32(&c.peak)
		if n <= p || atomic.CompareAndSwapInt32(&c.peak, p, n) {
			break
		}
	}
	v := new(big.Float)
	for i := 0; i < 1000; i++ {
		v.Add(v, big.NewFloat(1))
	}
	atomic.AddInt32(&c.active, -1)
	return v, nil
}

func TestSerializedRunsOneAtATime(t *testing.T) {
	inner := &countingBackend{}
	b := Serialized(inner)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Evaluate("erf", nil, MachineBits)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.peak))
}
