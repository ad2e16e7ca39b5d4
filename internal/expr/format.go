package expr

import (
	"strings"
)

// Operator precedence for infix printing.
const (
	precEqual = 10
	precPlus  = 20
	precTimes = 30
	precPower = 40
	precAtom  = 100
)

func (c *Call) String() string {
	switch {
	case c.head == HeadPlus && len(c.args) > 1:
		return joinInfix(c.args, " + ", precPlus)
	case c.head == HeadTimes && len(c.args) > 1:
		return joinInfix(c.args, "*", precTimes)
	case c.head == HeadPower && len(c.args) == 2:
		// right associative: the base needs parens at equal precedence
		return wrap(c.args[0], precPower+1) + "^" + wrap(c.args[1], precPower)
	case c.head == HeadEqual && len(c.args) == 2:
		return joinInfix(c.args, " == ", precEqual)
	}
	var sb strings.Builder
	sb.WriteString(c.head)
	sb.WriteByte('[')
	for i, a := range c.args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func joinInfix(args []Expr, sep string, prec int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = wrap(a, prec+1)
	}
	return strings.Join(parts, sep)
}

func wrap(e Expr, min int) string {
	if precedence(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func precedence(e Expr) int {
	switch v := e.(type) {
	case *Integer:
		if v.Sign() < 0 {
			return precTimes
		}
	case *Rational:
		return precTimes
	case *Real:
		if v.val.Sign() < 0 {
			return precTimes
		}
	case *Call:
		switch {
		case v.head == HeadPlus && len(v.args) > 1:
			return precPlus
		case v.head == HeadTimes && len(v.args) > 1:
			return precTimes
		case v.head == HeadPower && len(v.args) == 2:
			return precPower
		case v.head == HeadEqual && len(v.args) == 2:
			return precEqual
		}
	}
	return precAtom
}
