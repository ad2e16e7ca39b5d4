package numeric

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/ALTree/bigfloat"
)

type bigFunc struct {
	arity int
	eval  func(args []*big.Float, prec uint) (*big.Float, error)
}

// machineOnly lists functions the arbitrary-precision backend leaves to the
// float64 backend. Requests for them report a PrecisionError so callers can
// retry at machine precision.
var machineOnly = map[string]bool{
	"erfc":     true,
	"erfinv":   true,
	"gamma":    true,
	"loggamma": true,
	"beta":     true,
	"bessely":  true,
}

// Big evaluates functions at arbitrary precision on math/big. Each function
// works with guard bits and rounds the result to the requested precision.
type Big struct {
	funcs map[string]bigFunc
}

// NewBig returns the arbitrary-precision backend.
func NewBig() *Big {
	return &Big{funcs: map[string]bigFunc{
		"erf":      {1, erfBig},
		"lambertw": {1, lambertWBig},
		"zeta":     {1, zetaBig},
		"besselj":  {2, besselJBig},
		"legendre": {2, legendreBig},
	}}
}

// Evaluate implements Backend.
func (b *Big) Evaluate(name string, args []*big.Float, prec uint) (*big.Float, error) {
	fn, ok := b.funcs[name]
	if !ok {
		if machineOnly[name] {
			return nil, &PrecisionError{Function: name, Requested: prec, Supported: MachineBits}
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if err := checkArity(name, args, fn.arity); err != nil {
		return nil, err
	}
	for i, a := range args {
		if a.IsInf() {
			return nil, fmt.Errorf("argument %d: %w: %s of infinity", i+1, ErrDomain, name)
		}
	}
	if prec == 0 {
		prec = MachineBits
	}

	v, err := fn.eval(args, prec)
	var pe *PrecisionError
	if errors.As(err, &pe) {
		pe.Function = name
	}
	return v, err
}

func float64Of(x *big.Float) float64 {
	f, _ := x.Float64()
	return f
}

// erfBig sums the Maclaurin series
// erf(x) = 2/sqrt(pi) sum (-1)^n x^(2n+1) / (n! (2n+1)).
func erfBig(args []*big.Float, prec uint) (*big.Float, error) {
	x := args[0]
	if x.Sign() == 0 {
		return newFloat(prec), nil
	}
	ax := math.Abs(float64Of(x))
	// erfc(x) < exp(-x^2) falls below half an ulp of 1
	if ax > 1 && ax*ax > float64(prec)*math.Ln2+10 {
		return intFloat(int64(x.Sign()), prec), nil
	}

	// terms grow to about exp(x^2) before they shrink
	wp := prec + guardBits + uint(ax*ax*math.Log2E)
	x2 := newFloat(wp).Mul(x, x)
	x2.Neg(x2)
	term := newFloat(wp).Set(x)
	sum := newFloat(wp).Set(x)
	t := newFloat(wp)
	for n := int64(1); ; n++ {
		term.Mul(term, x2)
		term.Quo(term, intFloat(n, wp))
		t.Quo(term, intFloat(2*n+1, wp))
		sum.Add(sum, t)
		if float64(n) > ax*ax && converged(t, sum, wp) {
			break
		}
	}

	sqrtPi := newFloat(wp).Sqrt(Pi(wp))
	sum.Mul(sum, intFloat(2, wp))
	return round(sum.Quo(sum, sqrtPi), prec), nil
}

// lambertWBig is the principal branch W0 by Halley iteration from a float64
// starting point.
func lambertWBig(args []*big.Float, prec uint) (*big.Float, error) {
	x := args[0]
	if x.Sign() == 0 {
		return newFloat(prec), nil
	}
	xf := float64Of(x)
	wp := prec + guardBits
	if xf < -0.3 {
		// the derivative is singular at the branch point
		wp = 2*prec + guardBits
	}

	branch := Exp(intFloat(-1, wp), wp)
	branch.Neg(branch)
	switch x.Cmp(branch) {
	case -1:
		return nil, fmt.Errorf("%w: lambertw is complex below -1/e", ErrDomain)
	case 0:
		return intFloat(-1, prec), nil
	}

	var w *big.Float
	if math.IsInf(xf, 0) || xf > 1e300 {
		l1 := bigfloat.Log(newFloat(wp).Set(x))
		l2 := bigfloat.Log(newFloat(wp).Set(l1))
		w = l1.Sub(l1, l2)
	} else {
		w0, err := lambertW64(xf)
		if err != nil {
			w0 = -1
		}
		w = newFloat(wp).SetFloat64(w0)
	}

	x = newFloat(wp).Set(x)
	one, two := intFloat(1, wp), intFloat(2, wp)
	for i := 0; i < 200; i++ {
		ew := bigfloat.Exp(w)
		f := newFloat(wp).Mul(w, ew)
		f.Sub(f, x)
		wp1 := newFloat(wp).Add(w, one)
		if wp1.Sign() == 0 {
			break
		}
		// Halley: dw = f / (e^w (w+1) - (w+2) f / (2(w+1)))
		d := newFloat(wp).Mul(ew, wp1)
		c := newFloat(wp).Add(w, two)
		c.Mul(c, f)
		c.Quo(c, newFloat(wp).Mul(two, wp1))
		d.Sub(d, c)
		if d.Sign() == 0 {
			break
		}
		dw := newFloat(wp).Quo(f, d)
		w.Sub(w, dw)
		if converged(dw, w, wp-8) {
			break
		}
	}
	return round(w, prec), nil
}

// zetaBig evaluates the Riemann zeta function for real s >= 1/2 with
// Borwein's algorithm on the alternating eta series.
func zetaBig(args []*big.Float, prec uint) (*big.Float, error) {
	s := args[0]
	one := intFloat(1, prec)
	if s.Cmp(one) == 0 {
		return nil, fmt.Errorf("%w: zeta has a pole at 1", ErrDomain)
	}
	sf := float64Of(s)
	if sf < 0.5 {
		return nil, &PrecisionError{Requested: prec, Supported: MachineBits}
	}

	wp := prec + guardBits
	if sf > float64(wp)+2 {
		// 2^-s is below the working precision
		return round(one, prec), nil
	}
	// 1 - 2^(1-s) cancels near s = 1
	dist := newFloat(wp + 64).Sub(s, one)
	if e := dist.MantExp(nil); e < 0 {
		wp += uint(-e) + 2
	}

	sInt, exact := s.Int64()
	integral := s.IsInt() && exact == big.Exact
	sw := newFloat(wp).Set(s)

	// n terms give an error near (3 + sqrt 8)^-n
	n := int(float64(wp)*math.Ln2/math.Log(3+math.Sqrt(8))) + 2
	d := make([]*big.Float, n+1)
	t := newFloat(wp).Quo(intFloat(1, wp), intFloat(int64(n), wp))
	acc := newFloat(wp).Set(t)
	nf := intFloat(int64(n), wp)
	d[0] = newFloat(wp).Mul(nf, acc)
	for i := 1; i <= n; i++ {
		t.Mul(t, intFloat(4*int64(n+i-1)*int64(n-i+1), wp))
		t.Quo(t, intFloat(int64(2*i)*int64(2*i-1), wp))
		acc.Add(acc, t)
		d[i] = newFloat(wp).Mul(nf, acc)
	}

	sum := newFloat(wp)
	for k := 0; k < n; k++ {
		term := newFloat(wp).Sub(d[k], d[n])
		if k > 0 {
			base := intFloat(int64(k+1), wp)
			var kp *big.Float
			if integral {
				kp = powInt(base, sInt)
			} else {
				kp = bigfloat.Pow(base, sw)
			}
			term.Quo(term, kp)
		}
		if k%2 == 1 {
			sum.Sub(sum, term)
		} else {
			sum.Add(sum, term)
		}
	}
	eta := sum.Neg(sum)
	eta.Quo(eta, d[n])

	var p *big.Float
	if integral {
		p = newFloat(wp).SetMantExp(intFloat(1, wp), int(1-sInt))
	} else {
		p = bigfloat.Pow(intFloat(2, wp), newFloat(wp).Sub(intFloat(1, wp), sw))
	}
	den := newFloat(wp).Sub(intFloat(1, wp), p)
	return round(eta.Quo(eta, den), prec), nil
}

// maxBesselOrder bounds the order served at high precision.
const maxBesselOrder = 10000

// besselJBig sums J_n(x) = sum (-1)^k (x/2)^(2k+n) / (k! (k+n)!) for
// integer order n.
func besselJBig(args []*big.Float, prec uint) (*big.Float, error) {
	nu, x := args[0], args[1]
	if !nu.IsInt() {
		return nil, &PrecisionError{Requested: prec, Supported: MachineBits}
	}
	n64, _ := nu.Int64()
	neg := n64 < 0
	if neg {
		n64 = -n64
	}
	if n64 > maxBesselOrder {
		return nil, &PrecisionError{Requested: prec, Supported: MachineBits}
	}
	if x.Sign() == 0 {
		if n64 == 0 {
			return intFloat(1, prec), nil
		}
		return newFloat(prec), nil
	}
	ax := math.Abs(float64Of(x))
	if ax > float64(4*prec+1000) {
		return nil, &PrecisionError{Requested: prec, Supported: MachineBits}
	}

	wp := prec + guardBits + uint(ax*math.Log2E)
	h := newFloat(wp).Quo(x, intFloat(2, wp))
	h2 := newFloat(wp).Mul(h, h)
	h2.Neg(h2)

	term := powInt(h, n64)
	for i := int64(2); i <= n64; i++ {
		term.Quo(term, intFloat(i, wp))
	}
	sum := newFloat(wp).Set(term)
	for k := int64(1); ; k++ {
		term.Mul(term, h2)
		term.Quo(term, intFloat(k*(k+n64), wp))
		sum.Add(sum, term)
		if float64(k) > ax/2 && converged(term, sum, wp) {
			break
		}
	}
	if neg && n64%2 == 1 {
		sum.Neg(sum)
	}
	return round(sum, prec), nil
}

// legendreBig evaluates P_n(x) by the three-term recurrence.
func legendreBig(args []*big.Float, prec uint) (*big.Float, error) {
	if !args[0].IsInt() {
		return nil, fmt.Errorf("%w: legendre of non-integer degree", ErrUnsupported)
	}
	d, err := legendreDegree(float64Of(args[0]))
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return intFloat(1, prec), nil
	}

	wp := prec + guardBits + 2*uint(bits.Len(uint(d)))
	x := newFloat(wp).Set(args[1])
	p0, p1 := intFloat(1, wp), newFloat(wp).Set(x)
	for k := 1; k < d; k++ {
		a := newFloat(wp).Mul(x, p1)
		a.Mul(a, intFloat(int64(2*k+1), wp))
		b := newFloat(wp).Mul(p0, intFloat(int64(k), wp))
		a.Sub(a, b)
		a.Quo(a, intFloat(int64(k+1), wp))
		p0, p1 = p1, a
	}
	return round(p1, prec), nil
}
