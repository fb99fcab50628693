package eiffel

// Violation is the panic payload raised by Require. It aborts the calling
// stack at the point of the failed check; generated code never recovers it.
type Violation struct {
	Message string
}

// Error implements the error interface so a recovered Violation (e.g. in a
// test) prints its message directly.
func (v *Violation) Error() string {
	return v.Message
}

// ContractError is the recoverable counterpart of Violation, returned by
// RequireOrErr. The message is static: it is fixed at the call site, never
// built from runtime state.
type ContractError struct {
	Message string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return e.Message
}

// Require panics with a *Violation carrying msg if cond is false.
//
// Generated wrappers call this for invariant checks with messages of the
// form "Invariant <name> failed on entry" / "... failed on exit".
func Require(cond bool, msg string) {
	if cond {
		return
	}
	panic(&Violation{Message: msg})
}

// RequireOrErr returns a *ContractError carrying msg if cond is false, nil
// otherwise. For contexts that propagate errors instead of aborting.
func RequireOrErr(cond bool, msg string) error {
	if cond {
		return nil
	}
	return &ContractError{Message: msg}
}
