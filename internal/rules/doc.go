// Package rules matches and applies rewrite rules for special values and
// defining identities.
//
// Rules whose pattern head is the owning function ("call rules", such as
// ProductLog[0] -> 0) are tried by the dispatcher before any backend. Rules
// keyed on another head ("shape rules", such as the defining equation
// ProductLog[z_] * E^ProductLog[z_] -> z) are tried on compound expressions
// once their arguments have been evaluated.
package rules
