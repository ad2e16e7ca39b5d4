package expr

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/bytedance/sonic"
)

// ErrInvalidNode is returned when a JSON node has no or conflicting content.
var ErrInvalidNode = errors.New("invalid expression node")

// Node is the JSON wire form of an expression. Exactly one of Integer,
// Rational, Real, Symbol or Head is set.
type Node struct {
	Integer   string  `json:"integer,omitempty"`
	Rational  string  `json:"rational,omitempty"`
	Real      string  `json:"real,omitempty"`
	Precision uint    `json:"precision,omitempty"`
	Symbol    string  `json:"symbol,omitempty"`
	Head      string  `json:"head,omitempty"`
	Args      []*Node `json:"args,omitempty"`
}

// ToNode converts e to its wire form.
func ToNode(e Expr) (*Node, error) {
	switch v := e.(type) {
	case *Integer:
		return &Node{Integer: v.String()}, nil
	case *Rational:
		return &Node{Rational: v.String()}, nil
	case *Real:
		return &Node{Real: v.val.Text('g', -1), Precision: v.Precision()}, nil
	case *Symbol:
		return &Node{Symbol: v.name}, nil
	case *Call:
		n := &Node{Head: v.head, Args: make([]*Node, len(v.args))}
		for i, a := range v.args {
			an, err := ToNode(a)
			if err != nil {
				return nil, err
			}
			n.Args[i] = an
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s cannot be encoded", ErrInvalidNode, e.String())
}

// Expr converts the wire form back to an expression. Calls are rebuilt
// canonically.
func (n *Node) Expr() (Expr, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: null node", ErrInvalidNode)
	}
	set := 0
	for _, s := range []string{n.Integer, n.Rational, n.Real, n.Symbol, n.Head} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: expected exactly one of integer, rational, real, symbol, head", ErrInvalidNode)
	}

	switch {
	case n.Integer != "":
		v, ok := new(big.Int).SetString(n.Integer, 10)
		if !ok {
			return nil, fmt.Errorf("%w: bad integer %q", ErrInvalidNode, n.Integer)
		}
		return BigInt(v), nil
	case n.Rational != "":
		v, ok := new(big.Rat).SetString(n.Rational)
		if !ok {
			return nil, fmt.Errorf("%w: bad rational %q", ErrInvalidNode, n.Rational)
		}
		return FromRat(v), nil
	case n.Real != "":
		prec := n.Precision
		if prec == 0 {
			prec = MachinePrecision
		}
		v, _, err := big.ParseFloat(n.Real, 10, prec, big.ToNearestEven)
		if err != nil {
			return nil, fmt.Errorf("%w: bad real %q: %v", ErrInvalidNode, n.Real, err)
		}
		return Float(v), nil
	case n.Symbol != "":
		return Sym(n.Symbol), nil
	}

	args := make([]Expr, len(n.Args))
	for i, an := range n.Args {
		a, err := an.Expr()
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", n.Head, i+1, err)
		}
		args[i] = a
	}
	return Rebuild(n.Head, args), nil
}

// Encode serialises e as JSON.
func Encode(e Expr) ([]byte, error) {
	n, err := ToNode(e)
	if err != nil {
		return nil, err
	}
	return sonic.Marshal(n)
}

// Decode parses the JSON wire form.
func Decode(data []byte) (Expr, error) {
	var n Node
	if err := sonic.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	return n.Expr()
}
