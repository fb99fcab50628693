// Package policy loads out-of-source contract policies from CUE files.
//
// A policy file declares which receiver methods get which invariant without
// touching the source:
//
//	contracts: [
//		{receiver: "Counter", invariant: "positive"},
//		{receiver: "Stack", invariant: "wellFormed", timing: "after", methods: ["Pop"]},
//	]
//
// Timing strings use the same vocabulary (and synonyms) as in-source
// directives. An omitted or empty methods list applies the rule to every
// method of the receiver. When several rules match, the first in declaration
// order wins.
package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/eiffelgen/internal/attr"
	"github.com/roach88/eiffelgen/internal/contract"
)

// Policy error codes (E130-E139).
const (
	ErrNotFound      = "E130" // policy directory missing or no CUE files
	ErrLoadFailed    = "E131" // CUE load or build failed
	ErrInvalidRule   = "E132" // rule does not match the contracts schema
	ErrInvalidField  = "E133" // bad identifier or timing keyword in a rule
)

// LoadError represents a policy loading failure.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: [%s] %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Rule is one contract policy as declared in CUE.
type Rule struct {
	Receiver  string   `json:"receiver"`
	Invariant string   `json:"invariant"`
	Timing    string   `json:"timing,omitempty"`
	Methods   []string `json:"methods,omitempty"`
}

// compiledRule is a Rule with its timing resolved and its method list
// indexed.
type compiledRule struct {
	spec    contract.AttributeSpec
	recv    string
	methods map[string]bool // nil means every method
}

// Set is an ordered collection of compiled policy rules. It implements the
// rewrite layer's PolicyMatcher.
type Set struct {
	rules []compiledRule
	raw   []Rule
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Rules returns the rules as declared, in match order.
func (s *Set) Rules() []Rule {
	return s.raw
}

// Match reports the directive-equivalent spec for a (receiver, method)
// pair. The first matching rule in declaration order wins.
func (s *Set) Match(receiver, method string) (contract.AttributeSpec, bool) {
	for _, r := range s.rules {
		if r.recv != receiver {
			continue
		}
		if r.methods != nil && !r.methods[method] {
			continue
		}
		return r.spec, true
	}
	return contract.AttributeSpec{}, false
}

// Load reads every CUE file under dir and compiles the contracts list into
// a Set. All rule errors are collected; the Set holds whatever compiled
// cleanly.
func Load(dir string) (*Set, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrNotFound, Message: fmt.Sprintf("policy directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrNotFound, Message: fmt.Sprintf("error accessing policy directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrNotFound, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrNotFound, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	contracts := value.LookupPath(cue.ParsePath("contracts"))
	if !contracts.Exists() {
		return nil, []error{&LoadError{Code: ErrInvalidRule, Message: "no contracts list found in policy files"}}
	}

	iter, err := contracts.List()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrInvalidRule, Message: fmt.Sprintf("contracts must be a list: %v", err)}}
	}

	var (
		set  = &Set{}
		errs []error
	)
	for i := 0; iter.Next(); i++ {
		var raw Rule
		if err := iter.Value().Decode(&raw); err != nil {
			errs = append(errs, &LoadError{
				Code:    ErrInvalidRule,
				Message: fmt.Sprintf("contracts[%d]: %v", i, err),
				Pos:     iter.Value().Pos(),
			})
			continue
		}

		compiled, err := compileRule(i, raw, iter.Value().Pos())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set.rules = append(set.rules, *compiled)
		set.raw = append(set.raw, raw)
	}

	if len(set.rules) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrInvalidRule, Message: "contracts list is empty"})
	}

	return set, errs
}

// compileRule validates one rule and resolves its timing keyword.
func compileRule(index int, raw Rule, pos token.Pos) (*compiledRule, error) {
	if !attr.IsIdentifier(raw.Receiver) {
		return nil, &LoadError{
			Code:    ErrInvalidField,
			Message: fmt.Sprintf("contracts[%d].receiver: %q is not a type identifier", index, raw.Receiver),
			Pos:     pos,
		}
	}
	if !attr.IsIdentifier(raw.Invariant) {
		return nil, &LoadError{
			Code:    ErrInvalidField,
			Message: fmt.Sprintf("contracts[%d].invariant: %q is not an identifier", index, raw.Invariant),
			Pos:     pos,
		}
	}

	timing := contract.CheckBeforeAndAfter
	if raw.Timing != "" {
		t, ok := attr.ParseTiming(raw.Timing)
		if !ok {
			return nil, &LoadError{
				Code:    ErrInvalidField,
				Message: fmt.Sprintf("contracts[%d].timing: invalid timing keyword %q", index, raw.Timing),
				Pos:     pos,
			}
		}
		timing = t
	}

	rule := &compiledRule{
		spec: contract.AttributeSpec{InvariantName: raw.Invariant, Timing: timing},
		recv: raw.Receiver,
	}

	if len(raw.Methods) > 0 {
		rule.methods = make(map[string]bool, len(raw.Methods))
		for _, m := range raw.Methods {
			if !attr.IsIdentifier(m) {
				return nil, &LoadError{
					Code:    ErrInvalidField,
					Message: fmt.Sprintf("contracts[%d].methods: %q is not an identifier", index, m),
					Pos:     pos,
				}
			}
			rule.methods[m] = true
		}
	}

	return rule, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
