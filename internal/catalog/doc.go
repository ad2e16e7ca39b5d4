// Package catalog holds the static table of special functions: one
// Descriptor per name telling the dispatcher which backend names, argument
// preparation or custom evaluator to use, plus the rewrite rules owned by
// each function.
//
// A Builder collects registrations (built-ins via RegisterBuiltins, extra
// rules via YAML or TOML rule files) and Build freezes them into a Catalog
// that is safe for concurrent reads.
package catalog
