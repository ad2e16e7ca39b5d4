// Package expr holds the expression trees passed to and returned from the
// special-function engine: exact integers and rationals, precision-tagged
// reals, symbols, calls and pattern blanks, plus a small text reader for
// rule declarations and a JSON wire form.
package expr
