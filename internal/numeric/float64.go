package numeric

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/mathext"
)

// MachineBits is the precision of a float64 mantissa.
const MachineBits = 53

type float64Func struct {
	arity int
	eval  func(xs []float64) (float64, error)
}

// Float64 evaluates functions in float64 arithmetic using the standard
// library and gonum. It serves requests of up to MachineBits bits.
type Float64 struct {
	funcs map[string]float64Func
}

// NewFloat64 returns the machine-precision backend.
func NewFloat64() *Float64 {
	one := func(f func(float64) (float64, error)) float64Func {
		return float64Func{arity: 1, eval: func(xs []float64) (float64, error) { return f(xs[0]) }}
	}
	two := func(f func(a, b float64) (float64, error)) float64Func {
		return float64Func{arity: 2, eval: func(xs []float64) (float64, error) { return f(xs[0], xs[1]) }}
	}
	return &Float64{funcs: map[string]float64Func{
		"erf":      one(func(x float64) (float64, error) { return math.Erf(x), nil }),
		"erfc":     one(func(x float64) (float64, error) { return math.Erfc(x), nil }),
		"erfinv":   one(func(x float64) (float64, error) { return math.Erfinv(x), nil }),
		"lambertw": one(lambertW64),
		"zeta":     one(zeta64),
		"gamma":    one(gamma64),
		"loggamma": one(logGamma64),
		"beta":     two(func(a, b float64) (float64, error) { return mathext.Beta(a, b), nil }),
		"besselj":  two(besselJ64),
		"bessely":  two(besselY64),
		"legendre": two(legendre64),
	}}
}

// Evaluate implements Backend.
func (f *Float64) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	if prec > MachineBits {
		return nil, &PrecisionError{Function: name, Requested: prec, Supported: MachineBits}
	}
	fn, ok := f.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if err := checkArity(name, args, fn.arity); err != nil {
		return nil, err
	}
	xs := make([]float64, len(args))
	for i, a := range args {
		xs[i], _ = a.Float64()
		if err := validateNumber(name, xs[i]); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
	}

	v, err := fn.eval(xs)
	if err != nil {
		return nil, err
	}
	if err := validateNumber(name, v); err != nil {
		return nil, err
	}
	if prec == 0 {
		prec = MachineBits
	}
	return new(big.Float).SetPrec(prec).SetFloat64(v), nil
}

func isInteger(x float64) bool { return x == math.Trunc(x) && math.Abs(x) < 1<<31 }

// lambertW64 is the principal branch W0, refined with Halley's method.
func lambertW64(x float64) (float64, error) {
	const branch = -1 / math.E
	switch {
	case x == 0:
		return 0, nil
	case x < branch:
		if x > branch-1e-15 {
			return -1, nil
		}
		return 0, fmt.Errorf("%w: lambertw is complex below -1/e", ErrDomain)
	case x == branch:
		return -1, nil
	}

	var w float64
	switch {
	case x < -0.25:
		p := math.Sqrt(2 * (math.E*x + 1))
		w = -1 + p - p*p/3 + 11.0/72*p*p*p
	case x < 3:
		w = math.Log1p(x) * 0.75
	default:
		l1 := math.Log(x)
		l2 := math.Log(l1)
		w = l1 - l2 + l2/l1
	}
	for i := 0; i < 64; i++ {
		ew := math.Exp(w)
		f := w*ew - x
		wp1 := w + 1
		if wp1 == 0 {
			break
		}
		dw := f / (ew*wp1 - (w+2)*f/(2*wp1))
		w -= dw
		if math.Abs(dw) <= 1e-16*(1+math.Abs(w)) {
			break
		}
	}
	return w, nil
}

// zeta64 evaluates the Riemann zeta function for real s.
func zeta64(s float64) (float64, error) {
	switch {
	case s == 1:
		return 0, fmt.Errorf("%w: zeta has a pole at 1", ErrDomain)
	case s > 1:
		return mathext.Zeta(s, 1), nil
	case s >= 0:
		return zetaBorwein64(s), nil
	}
	// trivial zeros
	if isInteger(s) && math.Mod(s, 2) == 0 {
		return 0, nil
	}
	// reflection: zeta(s) = 2^s pi^(s-1) sin(pi s/2) gamma(1-s) zeta(1-s)
	return math.Pow(2, s) * math.Pow(math.Pi, s-1) * math.Sin(math.Pi*s/2) *
		math.Gamma(1-s) * mathext.Zeta(1-s, 1), nil
}

// zetaBorwein64 is Borwein's alternating-series algorithm, accurate to
// float64 for real s in [0, 1).
func zetaBorwein64(s float64) float64 {
	const n = 24
	var d [n + 1]float64
	t := 1.0 / n
	acc := t
	d[0] = n * acc
	for i := 1; i <= n; i++ {
		t *= 4 * float64(n+i-1) * float64(n-i+1) / float64(2*i*(2*i-1))
		acc += t
		d[i] = n * acc
	}
	sum := 0.0
	for k := 0; k < n; k++ {
		term := (d[k] - d[n]) / math.Pow(float64(k+1), s)
		if k%2 == 1 {
			term = -term
		}
		sum += term
	}
	eta := -sum / d[n]
	return eta / (1 - math.Pow(2, 1-s))
}

func gamma64(x float64) (float64, error) {
	if x <= 0 && isInteger(x) {
		return 0, fmt.Errorf("%w: gamma has a pole at %g", ErrDomain, x)
	}
	return math.Gamma(x), nil
}

func logGamma64(x float64) (float64, error) {
	if x <= 0 && isInteger(x) {
		return 0, fmt.Errorf("%w: loggamma has a pole at %g", ErrDomain, x)
	}
	v, sign := math.Lgamma(x)
	if sign < 0 {
		return 0, fmt.Errorf("%w: loggamma is complex at %g", ErrDomain, x)
	}
	return v, nil
}

// besselJ64 evaluates J_nu(x) for real order.
func besselJ64(nu, x float64) (float64, error) {
	if isInteger(nu) {
		return math.Jn(int(nu), x), nil
	}
	if x < 0 {
		return 0, fmt.Errorf("%w: besselj of non-integer order is complex for x < 0", ErrDomain)
	}
	if x == 0 {
		if nu > 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: besselj of negative order has a pole at 0", ErrDomain)
	}
	if x >= 17 && x >= nu*nu/2 {
		return besselJAsymptotic(nu, x), nil
	}
	return besselJSeries(nu, x), nil
}

// besselJSeries sums (-1)^k (x/2)^(2k+nu) / (k! gamma(k+nu+1)).
func besselJSeries(nu, x float64) float64 {
	h := x / 2
	term := math.Pow(h, nu) / math.Gamma(nu+1)
	sum := term
	for k := 1; k < 500; k++ {
		term *= -h * h / (float64(k) * (float64(k) + nu))
		sum += term
		if math.Abs(term) < 1e-17*math.Abs(sum) && float64(k) > h {
			break
		}
	}
	return sum
}

// besselJAsymptotic is Hankel's expansion for large x.
func besselJAsymptotic(nu, x float64) float64 {
	mu := 4 * nu * nu
	p, q := 1.0, 0.0
	a := 1.0
	prev := math.Inf(1)
	for k := 1; k < 60; k++ {
		odd := float64(2*k - 1)
		a *= (mu - odd*odd) / (float64(k) * 8 * x)
		if math.Abs(a) >= prev {
			break
		}
		prev = math.Abs(a)
		switch k % 4 {
		case 1:
			q += a
		case 2:
			p -= a
		case 3:
			q -= a
		case 0:
			p += a
		}
	}
	chi := x - (nu/2+0.25)*math.Pi
	return math.Sqrt(2/(math.Pi*x)) * (p*math.Cos(chi) - q*math.Sin(chi))
}

func besselY64(nu, x float64) (float64, error) {
	if x <= 0 {
		return 0, fmt.Errorf("%w: bessely is singular or complex for x <= 0", ErrDomain)
	}
	if isInteger(nu) {
		return math.Yn(int(nu), x), nil
	}
	jp, err := besselJ64(nu, x)
	if err != nil {
		return 0, err
	}
	jm, err := besselJ64(-nu, x)
	if err != nil {
		return 0, err
	}
	s, c := math.Sincos(nu * math.Pi)
	return (jp*c - jm) / s, nil
}

// maxLegendreDegree bounds the recurrence length.
const maxLegendreDegree = 100000

func legendreDegree(n float64) (int, error) {
	if !isInteger(n) {
		return 0, fmt.Errorf("%w: legendre of non-integer degree", ErrUnsupported)
	}
	d := int(n)
	if d < 0 {
		d = -d - 1
	}
	if d > maxLegendreDegree {
		return 0, fmt.Errorf("%w: legendre degree %d too large", ErrUnsupported, d)
	}
	return d, nil
}

// legendre64 evaluates P_n(x) by the three-term recurrence.
func legendre64(n, x float64) (float64, error) {
	d, err := legendreDegree(n)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 1, nil
	}
	p0, p1 := 1.0, x
	for k := 1; k < d; k++ {
		p0, p1 = p1, (float64(2*k+1)*x*p1-float64(k)*p0)/float64(k+1)
	}
	return p1, nil
}
