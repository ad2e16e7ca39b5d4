// Package symbolic implements the exact backend: closed forms for special
// values of the built-in functions, keyed by backend name.
package symbolic
