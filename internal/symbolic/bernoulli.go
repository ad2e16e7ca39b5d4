package symbolic

import (
	"math/big"
	"sync"
)

// maxBernoulli bounds the exact Bernoulli table.
const maxBernoulli = 258

var (
	bernoulliOnce  sync.Once
	bernoulliTable []*big.Rat
)

// Bernoulli returns B_n for 0 <= n <= maxBernoulli with the B_1 = +1/2
// convention, or false when n is out of range.
func Bernoulli(n int) (*big.Rat, bool) {
	if n < 0 || n > maxBernoulli {
		return nil, false
	}
	bernoulliOnce.Do(func() { bernoulliTable = akiyamaTanigawa(maxBernoulli) })
	return new(big.Rat).Set(bernoulliTable[n]), true
}

// akiyamaTanigawa computes B_0..B_n exactly.
func akiyamaTanigawa(n int) []*big.Rat {
	out := make([]*big.Rat, n+1)
	a := make([]*big.Rat, n+1)
	tmp := new(big.Rat)
	for m := 0; m <= n; m++ {
		a[m] = big.NewRat(1, int64(m+1))
		for j := m; j >= 1; j-- {
			tmp.Sub(a[j-1], a[j])
			a[j-1] = new(big.Rat).Mul(big.NewRat(int64(j), 1), tmp)
		}
		out[m] = new(big.Rat).Set(a[0])
	}
	return out
}
