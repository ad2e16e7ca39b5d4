package http

import "github.com/GriffinCanCode/specfn/internal/expr"

// EvaluateRequest is the body of POST /v1/evaluate. Precision (bits) and
// Digits are mutually exclusive.
type EvaluateRequest struct {
	Expr      *expr.Node `json:"expr"`
	Precision uint       `json:"precision,omitempty"`
	Digits    float64    `json:"digits,omitempty"`
	Numeric   bool       `json:"numeric,omitempty"`
}

// EvaluateResponse reports the result of an evaluation.
type EvaluateResponse struct {
	ID         string     `json:"id"`
	Result     *expr.Node `json:"result"`
	Text       string     `json:"text"`
	Evaluated  bool       `json:"evaluated"`
	Reduced    bool       `json:"reduced"`
	Path       string     `json:"path"`
	Diagnostic string     `json:"diagnostic,omitempty"`
}

// FunctionInfo describes one catalog entry.
type FunctionInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Symbolic string `json:"symbolic,omitempty"`
	Numeric  string `json:"numeric,omitempty"`
	Rules    int    `json:"rules"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	ID    string `json:"id,omitempty"`
}
