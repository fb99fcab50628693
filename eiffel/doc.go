// Package eiffel provides the runtime guard primitives that generated
// contract wrappers call.
//
// The package is deliberately dependency-free: any package containing
// generated wrappers imports it, so it must stay importable without pulling
// in the generator or its toolchain.
//
// Require is the abort-style guard. A false condition panics with a
// *Violation; a contract violation is never a recoverable error value and is
// never downgraded to a warning. RequireOrErr is the companion for call
// sites that propagate errors instead of aborting; the generator itself
// never emits it.
package eiffel
