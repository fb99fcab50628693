// Package synth constructs the generated method pair from a parsed
// directive and an extracted signature.
//
// The renamed original keeps the input body unchanged; the wrapper keeps the
// input name and signature and inserts the configured guards around a
// forwarding call. Synthesis is a pure function: the same inputs always
// produce structurally identical output.
package synth

import (
	"fmt"
	"go/token"
	"strconv"

	"github.com/dave/dst"

	"github.com/roach88/eiffelgen/internal/contract"
)

// RuntimePackage is the package name generated guards call through. The
// rewrite layer is responsible for importing it.
const RuntimePackage = "eiffel"

// Synthesize builds the wrapper and renamed-original pair for decl. The
// input declaration is not modified; both outputs are deep clones.
//
// The wrapper's name, parameter list and return type are identical to the
// original declaration; only its body differs. The renamed original differs
// only in name and doc comment.
func Synthesize(spec contract.AttributeSpec, sig *contract.MethodSignature, decl *dst.FuncDecl) *contract.TransformationResult {
	renamedName := sig.Name + contract.RenameSuffix

	renamed := dst.Clone(decl).(*dst.FuncDecl)
	renamed.Name = dst.NewIdent(renamedName)
	renamed.Decs.Start.Replace(
		fmt.Sprintf("// %s is the original body of %s, retained for the contract", renamedName, sig.Name),
		"// wrapper. It is called only by the wrapper and must not be invoked directly.",
	)
	renamed.Decs.Before = dst.EmptyLine

	wrapper := dst.Clone(decl).(*dst.FuncDecl)
	wrapper.Body = wrapperBody(spec, sig, renamedName)

	return &contract.TransformationResult{
		Wrapper:         wrapper,
		RenamedOriginal: renamed,
	}
}

// wrapperBody emits, in order: the entry guard (if the timing's entry slot
// is active), the forwarding call with results bound to fresh temporaries,
// the exit guard (if active), and the return.
func wrapperBody(spec contract.AttributeSpec, sig *contract.MethodSignature, renamedName string) *dst.BlockStmt {
	var stmts []dst.Stmt

	if spec.Timing.Before() {
		stmts = append(stmts, guardStmt(sig, spec, "entry"))
	}

	call := forwardCall(sig, renamedName)

	switch {
	case sig.Results == 0:
		stmts = append(stmts, &dst.ExprStmt{X: call})
		if spec.Timing.After() {
			stmts = append(stmts, guardStmt(sig, spec, "exit"))
		}

	case !spec.Timing.After():
		// No exit slot: nothing observes state after the call, so the
		// result needs no temporary.
		stmts = append(stmts, &dst.ReturnStmt{Results: []dst.Expr{call}})

	default:
		temps := resultTemps(sig)
		stmts = append(stmts,
			&dst.AssignStmt{
				Lhs: identList(temps),
				Tok: token.DEFINE,
				Rhs: []dst.Expr{call},
			},
			guardStmt(sig, spec, "exit"),
			&dst.ReturnStmt{Results: identList(temps)},
		)
	}

	return &dst.BlockStmt{List: stmts}
}

// guardStmt emits eiffel.Require(recv.invariant(), "Invariant <name> failed
// on <phase>").
func guardStmt(sig *contract.MethodSignature, spec contract.AttributeSpec, phase string) dst.Stmt {
	msg := fmt.Sprintf("Invariant %s failed on %s", spec.InvariantName, phase)

	return &dst.ExprStmt{X: &dst.CallExpr{
		Fun: &dst.SelectorExpr{
			X:   dst.NewIdent(RuntimePackage),
			Sel: dst.NewIdent("Require"),
		},
		Args: []dst.Expr{
			&dst.CallExpr{Fun: &dst.SelectorExpr{
				X:   dst.NewIdent(sig.Receiver.Name),
				Sel: dst.NewIdent(spec.InvariantName),
			}},
			&dst.BasicLit{Kind: token.STRING, Value: strconv.Quote(msg)},
		},
	}}
}

// forwardCall emits recv.renamed(p1, p2, ...), forwarding every captured
// parameter positionally in declaration order.
func forwardCall(sig *contract.MethodSignature, renamedName string) *dst.CallExpr {
	call := &dst.CallExpr{
		Fun: &dst.SelectorExpr{
			X:   dst.NewIdent(sig.Receiver.Name),
			Sel: dst.NewIdent(renamedName),
		},
	}
	for _, p := range sig.Params {
		call.Args = append(call.Args, dst.NewIdent(p.Name))
	}
	if n := len(sig.Params); n > 0 && sig.Params[n-1].Variadic {
		call.Ellipsis = true
	}
	return call
}

// resultTemps picks one fresh temporary per result value, avoiding the
// receiver and parameter names.
func resultTemps(sig *contract.MethodSignature) []string {
	used := sig.UsedNames()
	names := make([]string, sig.Results)
	for i := range names {
		name := "ret" + strconv.Itoa(i)
		for used[name] {
			name = "_" + name
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func identList(names []string) []dst.Expr {
	exprs := make([]dst.Expr, len(names))
	for i, name := range names {
		exprs[i] = dst.NewIdent(name)
	}
	return exprs
}
