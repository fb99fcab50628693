package rewrite

import (
	"strings"

	"github.com/dave/dst"
)

// directiveMarker is the comment directive that marks a method for contract
// injection. Following Go directive convention there is no space after the
// comment marker:
//
//	//eiffel:invariant positive
//	//eiffel:invariant positive, "before"
//	//eiffel:invariant(positive, "before")
const directiveMarker = "//eiffel:invariant"

// findDirective scans a declaration's doc comment for the contract
// directive and returns its argument text.
func findDirective(decl *dst.FuncDecl) (args string, ok bool) {
	for _, line := range decl.Decs.Start.All() {
		if rest, found := directiveArgs(line); found {
			return rest, true
		}
	}
	return "", false
}

// stripDirective removes the directive line from a declaration's doc
// comment, so transformed output never re-triggers generation.
func stripDirective(decl *dst.FuncDecl) {
	lines := decl.Decs.Start.All()
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, found := directiveArgs(line); found {
			continue
		}
		kept = append(kept, line)
	}
	decl.Decs.Start.Replace(kept...)
}

// directiveArgs matches one comment line against the directive marker. The
// argument list may optionally be parenthesized, attribute-style.
func directiveArgs(line string) (string, bool) {
	if !strings.HasPrefix(line, directiveMarker) {
		return "", false
	}
	rest := line[len(directiveMarker):]

	// Reject prefixes of longer directives, e.g. //eiffel:invariantx.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '(' {
		return "", false
	}

	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	return rest, true
}
