package contract

import (
	"strconv"

	"github.com/dave/dst"
)

// RenameSuffix is appended to a method's name to form the internal name the
// original body is retained under. The wrapper is the only caller of the
// renamed method; user code must not declare identifiers with this suffix.
const RenameSuffix = "_noInvariant"

// Timing selects which of the two guard slots are active in a generated
// wrapper. The zero value is CheckBeforeAndAfter, the default when a
// directive supplies no timing keyword.
type Timing int

const (
	// CheckBeforeAndAfter checks the invariant on entry and on exit.
	CheckBeforeAndAfter Timing = iota

	// CheckBefore checks the invariant on entry only. A call that leaves
	// the invariant false afterward still returns normally.
	CheckBefore

	// CheckAfter checks the invariant on exit only. A call whose invariant
	// was already false on entry still executes the original body.
	CheckAfter
)

// Before reports whether the entry guard slot is active.
func (t Timing) Before() bool {
	return t == CheckBefore || t == CheckBeforeAndAfter
}

// After reports whether the exit guard slot is active.
func (t Timing) After() bool {
	return t == CheckAfter || t == CheckBeforeAndAfter
}

// Valid reports whether t is one of the three defined values.
func (t Timing) Valid() bool {
	switch t {
	case CheckBefore, CheckAfter, CheckBeforeAndAfter:
		return true
	}
	return false
}

// String returns the canonical directive keyword for t.
func (t Timing) String() string {
	switch t {
	case CheckBefore:
		return "before"
	case CheckAfter:
		return "after"
	case CheckBeforeAndAfter:
		return "before_and_after"
	}
	return "invalid"
}

// MarshalJSON encodes t as its canonical keyword.
func (t Timing) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// AttributeSpec is the parsed configuration of one contract directive.
// Immutable after parsing.
//
// InvariantName must name a zero-argument method returning bool on the
// receiver type. That is a contract with the author, not something the
// transformer verifies; the downstream compile of the generated code is what
// catches a missing or mistyped predicate.
type AttributeSpec struct {
	InvariantName string `json:"invariant_name"`
	Timing        Timing `json:"timing"`
}

// Param is one named binding in a method's receiver or parameter list.
// Type points into the source declaration, so the printed form is preserved
// verbatim when the declaration is cloned.
type Param struct {
	Name     string
	Type     dst.Expr
	Variadic bool
}

// MethodSignature is the decomposed shape of an annotated method. Extracted
// once, read-only thereafter.
type MethodSignature struct {
	// Name is the method's declared name, which the wrapper keeps.
	Name string

	// Receiver is the named receiver binding. Extraction rejects
	// declarations without one; this transformer only targets methods.
	Receiver Param

	// ReceiverTypeName is the receiver's base type identifier with any
	// pointer and type-parameter decoration stripped: "Stack" for both
	// *Stack and *Stack[T]. Used for policy matching and the manifest.
	ReceiverTypeName string

	// Params holds the parameter bindings in declaration order, flattened
	// so a field declaring two names contributes two entries.
	Params []Param

	// Results is the flattened count of declared result values. Zero
	// means the method produces no value.
	Results int
}

// UsedNames returns the identifiers bound by the receiver and parameters.
// Synthesis picks result temporaries outside this set.
func (s *MethodSignature) UsedNames() map[string]bool {
	used := make(map[string]bool, len(s.Params)+1)
	used[s.Receiver.Name] = true
	for _, p := range s.Params {
		used[p.Name] = true
	}
	return used
}

// TransformationResult is the sole output of one transformation: two sibling
// methods to install on the same receiver type. Wrapper carries the original
// name and a byte-for-byte identical signature; RenamedOriginal carries the
// original body unchanged under the internal name.
type TransformationResult struct {
	Wrapper         *dst.FuncDecl
	RenamedOriginal *dst.FuncDecl
}
