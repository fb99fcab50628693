// Package attr parses the argument list of a contract directive into an
// AttributeSpec.
//
// The grammar is a comma-separated token list:
//
//	<invariant_identifier>
//	<invariant_identifier>, "before" | "after" | "before_and_after"
//	<invariant_identifier>, check_time = "before"
//
// The first token must be a bare identifier naming the invariant predicate.
// String-literal tokens must be timing keywords. Anything else in the
// remainder is a forward-compatibility slot and is silently ignored.
package attr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/eiffelgen/internal/contract"
)

// Parse error codes (E100-E109).
const (
	ErrMalformedAttribute = "E100" // first token missing or not an identifier
	ErrEmptyDirective     = "E101" // directive has no arguments at all
	ErrInvalidTiming      = "E102" // string literal outside the timing vocabulary
)

// ParseError represents a directive parse failure.
type ParseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// timingKeywords is the single synonym table. The require/ensure vocabulary
// is one upstream variant's naming for the same three values, not a separate
// feature, so it maps into the same enum here.
var timingKeywords = map[string]contract.Timing{
	"before":             contract.CheckBefore,
	"after":              contract.CheckAfter,
	"before_and_after":   contract.CheckBeforeAndAfter,
	"require":            contract.CheckBefore,
	"ensure":             contract.CheckAfter,
	"require_and_ensure": contract.CheckBeforeAndAfter,
}

// CanonicalKeywords lists the canonical timing vocabulary for error messages.
var CanonicalKeywords = []string{"before", "after", "before_and_after"}

// identPattern matches simple identifiers. Directive identifiers stay ASCII;
// the generated call site would not compile otherwise anyway, but rejecting
// early gives a directive-level error instead of a downstream compile error.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is a simple identifier token.
func IsIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// ParseTiming resolves a timing keyword (canonical or synonym) to its Timing
// value. Used by the directive parser and by policy validation.
func ParseTiming(keyword string) (contract.Timing, bool) {
	t, ok := timingKeywords[keyword]
	return t, ok
}

// Parse parses a directive argument list using the default timing
// (CheckBeforeAndAfter) when no timing token is supplied.
func Parse(args string) (contract.AttributeSpec, error) {
	return ParseWithDefault(args, contract.CheckBeforeAndAfter)
}

// ParseWithDefault parses a directive argument list. def is used when no
// timing token is supplied; it lets a project config change the default
// without touching directives.
func ParseWithDefault(args string, def contract.Timing) (contract.AttributeSpec, error) {
	spec := contract.AttributeSpec{Timing: def}

	tokens := splitArgs(args)
	if len(tokens) == 0 {
		return spec, &ParseError{
			Code:    ErrEmptyDirective,
			Message: "directive requires the invariant predicate name as its first argument",
		}
	}

	// First token: bare identifier naming the invariant predicate.
	first := tokens[0]
	if !IsIdentifier(first) {
		return spec, &ParseError{
			Code:    ErrMalformedAttribute,
			Message: fmt.Sprintf("expected an invariant identifier as the first argument, got %q", first),
			Token:   first,
		}
	}
	spec.InvariantName = first

	// Remaining tokens: recognized string literals set the timing; the
	// check_time="..." name-value form goes through the same table. Any
	// other token is a forward-compatibility slot and is ignored.
	for _, tok := range tokens[1:] {
		lit, ok := stringLiteral(tok)
		if !ok {
			if value, isNV := nameValue(tok, "check_time"); isNV {
				lit, ok = value, true
			}
		}
		if !ok {
			continue
		}

		timing, known := ParseTiming(lit)
		if !known {
			return spec, &ParseError{
				Code: ErrInvalidTiming,
				Message: fmt.Sprintf("invalid timing keyword %q: expected one of %s",
					lit, quotedList(CanonicalKeywords)),
				Token: lit,
			}
		}
		spec.Timing = timing
	}

	return spec, nil
}

// splitArgs splits the argument text on top-level commas, respecting string
// quotes, and trims surrounding whitespace. Empty pieces are dropped.
func splitArgs(args string) []string {
	var (
		tokens   []string
		current  strings.Builder
		inString bool
		escaped  bool
	)

	flush := func() {
		tok := strings.TrimSpace(current.String())
		current.Reset()
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range args {
		switch {
		case escaped:
			escaped = false
			current.WriteRune(r)
		case inString && r == '\\':
			escaped = true
			current.WriteRune(r)
		case r == '"':
			inString = !inString
			current.WriteRune(r)
		case r == ',' && !inString:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// stringLiteral unquotes tok if it is a double-quoted string literal.
func stringLiteral(tok string) (string, bool) {
	if len(tok) < 2 || tok[0] != '"' {
		return "", false
	}
	s, err := strconv.Unquote(tok)
	if err != nil {
		return "", false
	}
	return s, true
}

// nameValue matches `key = "value"` tokens for the given key. Name-value
// tokens with any other key are ignored by the caller.
func nameValue(tok, key string) (string, bool) {
	name, rest, found := strings.Cut(tok, "=")
	if !found || strings.TrimSpace(name) != key {
		return "", false
	}
	return stringLiteral(strings.TrimSpace(rest))
}

func quotedList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strconv.Quote(w)
	}
	return strings.Join(quoted, ", ")
}
