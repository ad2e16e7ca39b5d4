package rules

import (
	"github.com/GriffinCanCode/specfn/internal/expr"
)

const (
	// maxOrderlessArgs caps permutation search for orderless heads.
	maxOrderlessArgs = 6
	// maxFlatArgs caps the expression side of a subset match.
	maxFlatArgs = 32
)

// Bindings maps blank names to the expressions they matched.
type Bindings map[string]expr.Expr

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Match unifies e against pattern. A blank that occurs more than once must
// bind structurally equal expressions each time.
func Match(pattern, e expr.Expr) (Bindings, bool) {
	b := Bindings{}
	if !match(pattern, e, b) {
		return nil, false
	}
	return b, true
}

func match(pattern, e expr.Expr, b Bindings) bool {
	switch p := pattern.(type) {
	case *expr.Blank:
		if !headMatches(p.Restriction(), e) {
			return false
		}
		if p.Name() == "" {
			return true
		}
		if prev, ok := b[p.Name()]; ok {
			return expr.Equal(prev, e)
		}
		b[p.Name()] = e
		return true

	case *expr.Call:
		c, ok := e.(*expr.Call)
		if !ok || c.Head() != p.Head() || c.Len() != p.Len() {
			return false
		}
		if isOrderless(p.Head()) {
			_, ok := matchOrderless(p.Args(), c.Args(), b)
			return ok
		}
		for i := 0; i < p.Len(); i++ {
			if !match(p.Arg(i), c.Arg(i), b) {
				return false
			}
		}
		return true
	}
	return expr.Equal(pattern, e)
}

func headMatches(restriction string, e expr.Expr) bool {
	switch restriction {
	case "":
		return true
	case "Integer":
		return expr.KindOf(e) == expr.KindInteger
	case "Rational":
		return expr.KindOf(e) == expr.KindRational
	case "Real":
		return expr.KindOf(e) == expr.KindReal
	case "Symbol":
		return expr.KindOf(e) == expr.KindSymbol
	}
	return expr.IsCall(e, restriction)
}

func isOrderless(head string) bool {
	return head == expr.HeadTimes || head == expr.HeadPlus
}

// MatchFlat matches a Times or Plus pattern against a subset of the
// arguments of a longer expression with the same head, as for a flat
// orderless head: ProductLog[z_] E^ProductLog[z_] matches inside
// 2 y ProductLog[x] E^ProductLog[x]. rest holds the unmatched arguments in
// their original order.
func MatchFlat(pattern, e expr.Expr) (b Bindings, rest []expr.Expr, ok bool) {
	p, ok1 := pattern.(*expr.Call)
	c, ok2 := e.(*expr.Call)
	if !ok1 || !ok2 || !isOrderless(p.Head()) || c.Head() != p.Head() ||
		c.Len() <= p.Len() || c.Len() > maxFlatArgs {
		return nil, nil, false
	}
	b = Bindings{}
	used, ok := matchOrderless(p.Args(), c.Args(), b)
	if !ok {
		return nil, nil, false
	}
	for i, a := range c.Args() {
		if !used[i] {
			rest = append(rest, a)
		}
	}
	return b, rest, true
}

// matchOrderless assigns every pattern argument to a distinct expression
// argument, trying assignments in order and committing the bindings of the
// first that succeeds. used marks the expression arguments taken.
func matchOrderless(ps, es []expr.Expr, b Bindings) (used []bool, ok bool) {
	used = make([]bool, len(es))
	if len(ps) > len(es) {
		return nil, false
	}
	if len(ps) > maxOrderlessArgs {
		if len(ps) != len(es) {
			return nil, false
		}
		for i := range ps {
			if !match(ps[i], es[i], b) {
				return nil, false
			}
			used[i] = true
		}
		return used, true
	}
	var try func(i int, cur Bindings) bool
	try = func(i int, cur Bindings) bool {
		if i == len(ps) {
			for k, v := range cur {
				b[k] = v
			}
			return true
		}
		for j := range es {
			if used[j] {
				continue
			}
			next := cur.clone()
			if !match(ps[i], es[j], next) {
				continue
			}
			used[j] = true
			if try(i+1, next) {
				return true
			}
			used[j] = false
		}
		return false
	}
	if !try(0, b.clone()) {
		return nil, false
	}
	return used, true
}
