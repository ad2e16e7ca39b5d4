// Package dispatch evaluates calls of catalog functions.
//
// For a call name[args] the Dispatcher looks up the descriptor, prepares the
// arguments, and then tries in order: the function's rewrite rules, its
// custom evaluator, the symbolic backend (exact arguments only) and the
// numeric backend (approximate arguments, or exact ones under a numeric
// context). A call nothing applies to is returned unevaluated. Exact input
// never silently becomes approximate output.
//
// EvaluateExpr applies the same procedure to every call in a tree, bottom
// up, and tries shape rules such as ProductLog[z] E^ProductLog[z] -> z on the
// rebuilt compound expressions.
//
// Backend failures at particular arguments (poles, branch cuts, panics) are
// contained: the call stays unevaluated and the failure is reported as the
// value's Diagnostic. Only unknown functions and runaway rewriting are
// returned as errors.
package dispatch
