// Package signature decomposes an annotated method declaration into the
// shape synthesis needs: receiver binding, ordered parameter list and result
// count.
//
// Extraction is strict where the upstream transformer was silently lossy:
// every binding the wrapper must forward has to be named. Unnamed or blank
// receivers and parameters are rejected with a dedicated error instead of
// being dropped from the forwarded-argument list.
package signature

import (
	"fmt"

	"github.com/dave/dst"

	"github.com/roach88/eiffelgen/internal/contract"
)

// Extraction error codes (E110-E129).
const (
	ErrMissingReceiver  = "E110" // declaration is a free function
	ErrUnnamedReceiver  = "E111" // receiver is unnamed or blank
	ErrUnsupportedParam = "E112" // parameter is unnamed or blank
	ErrMissingBody      = "E113" // declaration has no body
	ErrReservedSuffix   = "E120" // method name already carries the rename suffix
)

// ExtractError represents a declaration that cannot be transformed.
type ExtractError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Method  string `json:"method,omitempty"`
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Method, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Extract decomposes decl into a MethodSignature. The declaration is not
// modified; Type expressions in the result point into decl.
func Extract(decl *dst.FuncDecl) (*contract.MethodSignature, error) {
	name := decl.Name.Name

	if hasReservedSuffix(name) {
		return nil, &ExtractError{
			Code:    ErrReservedSuffix,
			Message: fmt.Sprintf("method name ends in the reserved suffix %q", contract.RenameSuffix),
			Method:  name,
		}
	}

	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return nil, &ExtractError{
			Code:    ErrMissingReceiver,
			Message: "only methods can carry an invariant directive, not free functions",
			Method:  name,
		}
	}

	if decl.Body == nil {
		return nil, &ExtractError{
			Code:    ErrMissingBody,
			Message: "method has no body to wrap",
			Method:  name,
		}
	}

	recvField := decl.Recv.List[0]
	if len(recvField.Names) == 0 || recvField.Names[0].Name == "_" {
		return nil, &ExtractError{
			Code:    ErrUnnamedReceiver,
			Message: "receiver must be named so the wrapper can call the invariant on it",
			Method:  name,
		}
	}

	sig := &contract.MethodSignature{
		Name: name,
		Receiver: contract.Param{
			Name: recvField.Names[0].Name,
			Type: recvField.Type,
		},
		ReceiverTypeName: baseTypeName(recvField.Type),
	}

	if decl.Type.Params != nil {
		for i, field := range decl.Type.Params.List {
			_, variadic := field.Type.(*dst.Ellipsis)

			if len(field.Names) == 0 {
				return nil, &ExtractError{
					Code:    ErrUnsupportedParam,
					Message: fmt.Sprintf("parameter %d is unnamed; every parameter must be named so the wrapper can forward it", i),
					Method:  name,
				}
			}
			for _, ident := range field.Names {
				if ident.Name == "_" {
					return nil, &ExtractError{
						Code:    ErrUnsupportedParam,
						Message: fmt.Sprintf("parameter %d is blank; every parameter must be named so the wrapper can forward it", i),
						Method:  name,
					}
				}
				sig.Params = append(sig.Params, contract.Param{
					Name:     ident.Name,
					Type:     field.Type,
					Variadic: variadic,
				})
			}
		}
	}

	if decl.Type.Results != nil {
		for _, field := range decl.Type.Results.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			sig.Results += n
		}
	}

	return sig, nil
}

// ReceiverTypeName returns the base receiver type identifier of decl, or ""
// for a free function. Unlike Extract it performs no validation; the rewrite
// layer uses it to match policy rules before committing to extraction.
func ReceiverTypeName(decl *dst.FuncDecl) string {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return ""
	}
	return baseTypeName(decl.Recv.List[0].Type)
}

// baseTypeName returns the base type identifier of a receiver type
// expression, stripping pointer and type-parameter decoration: "Stack" for
// Stack, *Stack, Stack[T] and *Stack[K, V].
func baseTypeName(expr dst.Expr) string {
	for {
		switch t := expr.(type) {
		case *dst.StarExpr:
			expr = t.X
		case *dst.IndexExpr:
			expr = t.X
		case *dst.IndexListExpr:
			expr = t.X
		case *dst.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func hasReservedSuffix(name string) bool {
	if len(name) < len(contract.RenameSuffix) {
		return false
	}
	return name[len(name)-len(contract.RenameSuffix):] == contract.RenameSuffix
}
