package rules

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/specfn/internal/expr"
)

var (
	// ErrInvalidRule is returned for rules whose pattern cannot be keyed.
	ErrInvalidRule = errors.New("invalid rewrite rule")
)

// Rule rewrites expressions matching Pattern into Result. Symbols in Result
// named after blanks in Pattern are replaced by their bindings.
type Rule struct {
	Owner   string
	Pattern expr.Expr
	Result  expr.Expr
	Source  string
}

// Compile parses a rule declared as text, e.g. ("ProductLog", "ProductLog[0]", "0").
func Compile(owner, pattern, result string) (Rule, error) {
	p, err := expr.Parse(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: pattern: %w", owner, err)
	}
	r, err := expr.Parse(result)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: result: %w", owner, err)
	}
	if _, ok := p.(*expr.Call); !ok {
		return Rule{}, fmt.Errorf("%w: %s: pattern %q is not a call", ErrInvalidRule, owner, pattern)
	}
	return Rule{Owner: owner, Pattern: p, Result: r, Source: pattern + " -> " + result}, nil
}

// MustCompile is Compile for static catalog declarations.
func MustCompile(owner, pattern, result string) Rule {
	r, err := Compile(owner, pattern, result)
	if err != nil {
		panic(err)
	}
	return r
}

// Head returns the head of the rule's pattern.
func (r Rule) Head() string { return r.Pattern.(*expr.Call).Head() }

// IsCallRule reports whether the rule rewrites calls of its owner. Other
// rules rewrite compound shapes such as the defining equation of an inverse
// function.
func (r Rule) IsCallRule() bool { return r.Head() == r.Owner }

// Apply rewrites e when it matches the rule. A Times or Plus pattern also
// rewrites part of a longer product or sum; the remaining factors or terms
// are kept.
func (r Rule) Apply(e expr.Expr) (expr.Expr, bool) {
	if b, ok := Match(r.Pattern, e); ok {
		return expr.Substitute(r.Result, b), true
	}
	b, rest, ok := MatchFlat(r.Pattern, e)
	if !ok {
		return nil, false
	}
	return expr.Rebuild(r.Head(), append(rest, expr.Substitute(r.Result, b))), true
}

// Store is an immutable collection of rules keyed by owner and by pattern
// head. It is safe for concurrent use.
type Store struct {
	calls  map[string][]Rule
	shapes map[string][]Rule
	size   int
}

// NewStore indexes rules, preserving their order.
func NewStore(rs ...Rule) (*Store, error) {
	s := &Store{
		calls:  make(map[string][]Rule),
		shapes: make(map[string][]Rule),
	}
	for _, r := range rs {
		if r.Pattern == nil || r.Result == nil || r.Owner == "" {
			return nil, fmt.Errorf("%w: incomplete rule %q", ErrInvalidRule, r.Source)
		}
		if _, ok := r.Pattern.(*expr.Call); !ok {
			return nil, fmt.Errorf("%w: pattern %s is not a call", ErrInvalidRule, r.Pattern)
		}
		if r.IsCallRule() {
			s.calls[r.Owner] = append(s.calls[r.Owner], r)
		} else {
			s.shapes[r.Head()] = append(s.shapes[r.Head()], r)
		}
		s.size++
	}
	return s, nil
}

// Len returns the number of rules.
func (s *Store) Len() int { return s.size }

// For returns the call rules of owner in declaration order.
func (s *Store) For(owner string) []Rule {
	return append([]Rule(nil), s.calls[owner]...)
}

// TryRewrite applies the first call rule of owner matching owner[args...].
func (s *Store) TryRewrite(owner string, args []expr.Expr) (expr.Expr, *Rule, bool) {
	rs := s.calls[owner]
	if len(rs) == 0 {
		return nil, nil, false
	}
	call := expr.NewCall(owner, args...)
	for i := range rs {
		if out, ok := rs[i].Apply(call); ok {
			return out, &rs[i], true
		}
	}
	return nil, nil, false
}

// TryShape applies the first shape rule keyed on e's head.
func (s *Store) TryShape(e expr.Expr) (expr.Expr, *Rule, bool) {
	c, ok := e.(*expr.Call)
	if !ok {
		return nil, nil, false
	}
	rs := s.shapes[c.Head()]
	for i := range rs {
		if out, ok := rs[i].Apply(e); ok {
			return out, &rs[i], true
		}
	}
	return nil, nil, false
}
