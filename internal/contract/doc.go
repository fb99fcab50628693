// Package contract provides the foundational types for eiffelgen.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import contract; contract imports nothing internal. This
// ensures contract remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - A transformation is a pure function of its inputs; nothing in this
//     package carries mutable state
//   - Record hashes are content-addressed (NFC-normalized, domain-separated
//     SHA-256), never derived from wall-clock time
//   - Method declarations are carried as *dst.FuncDecl so comments and
//     formatting survive the round trip verbatim
package contract
