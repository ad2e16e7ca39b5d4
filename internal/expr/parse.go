package expr

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"text/scanner"
)

// ErrSyntax is returned for malformed expression text.
var ErrSyntax = errors.New("expression syntax error")

// DigitsToBits converts decimal digits of precision to bits, rounding up.
// The result saturates at big.MaxPrec; non-positive and NaN inputs give 0.
func DigitsToBits(digits float64) uint {
	if math.IsNaN(digits) || digits <= 0 {
		return 0
	}
	bits := math.Ceil(digits * math.Log2(10))
	if bits >= big.MaxPrec {
		return big.MaxPrec
	}
	return uint(bits)
}

// BitsToDigits converts bits of precision to whole decimal digits.
func BitsToDigits(bits uint) int {
	return int(float64(bits) * math.Log10(2))
}

type token struct {
	kind rune
	text string
	pos  scanner.Position
}

// Parse reads Mathematica-style input: numbers, symbols, blanks (z_,
// n_Integer), calls F[a, b], the operators + - * / ^ == and parentheses.
// A decimal may carry a precision in digits: 1.5`30.
func Parse(text string) (Expr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseEqual()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != scanner.EOF {
		return nil, p.errorf("unexpected %q", p.peek().text)
	}
	return e, nil
}

// MustParse is Parse for static declarations; it panics on error.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func tokenize(text string) ([]token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(text))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	var scanErr error
	s.Error = func(_ *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("%w: %s", ErrSyntax, msg)
		}
	}

	var toks []token
	for tok := s.Scan(); ; tok = s.Scan() {
		toks = append(toks, token{kind: tok, text: s.TokenText(), pos: s.Position})
		if tok == scanner.EOF {
			break
		}
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != scanner.EOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(r rune) bool {
	if p.peek().kind == r {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w at %d: %s", ErrSyntax, p.peek().pos.Column, fmt.Sprintf(format, args...))
}

func (p *parser) parseEqual() (Expr, error) {
	lhs, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == '=' && p.pos+1 < len(p.toks) && p.toks[p.pos+1].kind == '=' {
		p.next()
		p.next()
		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return NewCall(HeadEqual, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *parser) parseSum() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for {
		switch {
		case p.accept('+'):
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, t)
		case p.accept('-'):
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, negate(t))
		default:
			if len(terms) == 1 {
				return first, nil
			}
			return Plus(terms...), nil
		}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	acc, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept('*'):
			f, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			acc = Times(acc, f)
		case p.accept('/'):
			d, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if IsIntegerValue(d, 0) {
				return nil, p.errorf("division by zero")
			}
			acc = Divide(acc, d)
		default:
			return acc, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.accept('-') {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negate(e), nil
	}
	if p.accept('+') {
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.accept('^') {
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Power(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	t := p.peek()
	if t.kind != scanner.Ident {
		return p.parsePrimary()
	}
	p.next()
	if i := strings.IndexByte(t.text, '_'); i >= 0 {
		return NewBlank(t.text[:i], t.text[i+1:]), nil
	}
	if !p.accept('[') {
		return Sym(t.text), nil
	}
	var args []Expr
	if !p.accept(']') {
		for {
			a, err := p.parseEqual()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.accept(']') {
				break
			}
			if !p.accept(',') {
				return nil, p.errorf("expected ',' or ']' in arguments of %s", t.text)
			}
		}
	}
	return Rebuild(t.text, args), nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case scanner.Int:
		v, ok := new(big.Int).SetString(t.text, 10)
		if !ok {
			return nil, fmt.Errorf("%w: bad integer %q", ErrSyntax, t.text)
		}
		if p.peek().kind == '`' {
			return p.parseReal(t.text)
		}
		return BigInt(v), nil
	case scanner.Float:
		return p.parseReal(t.text)
	case '(':
		e, err := p.parseEqual()
		if err != nil {
			return nil, err
		}
		if !p.accept(')') {
			return nil, p.errorf("expected ')'")
		}
		return e, nil
	case scanner.EOF:
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	return nil, fmt.Errorf("%w at %d: unexpected %q", ErrSyntax, t.pos.Column, t.text)
}

func (p *parser) parseReal(text string) (Expr, error) {
	prec := uint(MachinePrecision)
	if p.accept('`') {
		d := p.next()
		if d.kind != scanner.Int && d.kind != scanner.Float {
			return nil, p.errorf("expected precision digits after '`'")
		}
		digits, err := strconv.ParseFloat(d.text, 64)
		if err != nil || digits <= 0 {
			return nil, fmt.Errorf("%w: bad precision %q", ErrSyntax, d.text)
		}
		prec = DigitsToBits(digits)
	}
	f, _, err := big.ParseFloat(text, 10, prec, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number %q: %v", ErrSyntax, text, err)
	}
	return Float(f), nil
}

func negate(e Expr) Expr {
	switch v := e.(type) {
	case *Integer:
		return BigInt(new(big.Int).Neg(v.val))
	case *Rational:
		return FromRat(new(big.Rat).Neg(v.val))
	case *Real:
		return Float(new(big.Float).SetPrec(v.val.Prec()).Neg(v.val))
	}
	return Neg(e)
}
