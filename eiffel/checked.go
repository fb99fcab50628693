package eiffel

// Check selects which guard slots a Checked call evaluates. It mirrors the
// generator's timing policy for call sites that wrap at runtime instead of
// generating code. The zero value checks both slots.
type Check int

const (
	// BeforeAndAfter evaluates the invariant on entry and on exit.
	BeforeAndAfter Check = iota

	// Before evaluates the invariant on entry only.
	Before

	// After evaluates the invariant on exit only.
	After
)

// Checked runs fn with invariant guards around it and returns fn's result.
// It is the runtime equivalent of a generated wrapper: the entry check
// observes state as the caller left it, the exit check observes state after
// fn's side effects.
//
// The invariant must not itself mutate state; a non-idempotent predicate
// produces misleading entry/exit results. That is the caller's
// responsibility, not enforced here.
func Checked[T any](invariant func() bool, name string, when Check, fn func() T) T {
	if when == Before || when == BeforeAndAfter {
		Require(invariant(), "Invariant "+name+" failed on entry")
	}
	ret := fn()
	if when == After || when == BeforeAndAfter {
		Require(invariant(), "Invariant "+name+" failed on exit")
	}
	return ret
}

// Checked0 is Checked for functions that produce no value.
func Checked0(invariant func() bool, name string, when Check, fn func()) {
	Checked(invariant, name, when, func() struct{} {
		fn()
		return struct{}{}
	})
}
