// Package rewrite applies contract injection to whole Go source files.
//
// It parses a file with comments attached, finds methods marked by an
// //eiffel:invariant directive (or matched by a contract policy), replaces
// each with its generated wrapper pair, injects the runtime import and
// renders gofmt-clean output. Files with no annotated methods pass through
// byte-for-byte.
package rewrite

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/token"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"golang.org/x/tools/imports"

	"github.com/roach88/eiffelgen/internal/attr"
	"github.com/roach88/eiffelgen/internal/contract"
	"github.com/roach88/eiffelgen/internal/signature"
	"github.com/roach88/eiffelgen/internal/synth"
)

// RuntimeImportPath is the import path of the guard primitives generated
// wrappers call.
const RuntimeImportPath = "github.com/roach88/eiffelgen/eiffel"

// Rewrite error codes (E140-E149). Directive and signature errors keep
// their own codes (E10x, E11x-E12x) and gain a source position here.
const (
	ErrParseFailed  = "E140"
	ErrRenderFailed = "E141"
)

// Mode controls how errors are handled during a rewrite pass.
type Mode int

const (
	// FailFast stops on the first error encountered.
	FailFast Mode = iota
	// CollectAll collects all errors before returning.
	CollectAll
)

// PolicyMatcher resolves out-of-source contract policies. Match reports the
// directive-equivalent spec for a (receiver type, method) pair, if any. An
// in-source directive always wins over a policy match.
type PolicyMatcher interface {
	Match(receiver, method string) (contract.AttributeSpec, bool)
}

// Options configures a rewrite pass.
type Options struct {
	// Policy supplies out-of-source contract rules. May be nil.
	Policy PolicyMatcher

	// Mode selects fail-fast or collect-all error handling.
	Mode Mode

	// DefaultTiming replaces CheckBeforeAndAfter as the timing used when
	// a directive carries no timing token. The zero value is the
	// canonical default.
	DefaultTiming contract.Timing
}

// Transform records one applied transformation for reporting and the
// manifest.
type Transform struct {
	File      string                 `json:"file"`
	Receiver  string                 `json:"receiver"`
	Method    string                 `json:"method"`
	Spec      contract.AttributeSpec `json:"spec"`
	Hash      string                 `json:"hash"`
}

// Result is the outcome of rewriting one file.
type Result struct {
	// Source is the output file content. Equal to the input when no
	// method was transformed.
	Source []byte

	// Transforms lists the applied transformations in declaration order.
	Transforms []Transform

	// Changed reports whether Source differs from the input.
	Changed bool
}

// Error is a rewrite failure carrying a source position when one is known.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Pos     token.Position `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: [%s] %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// File rewrites one Go source file. In FailFast mode the first error aborts
// the pass and the result is nil; in CollectAll mode every annotated method
// is attempted and the result carries whatever succeeded.
func File(filename string, src []byte, opts Options) (*Result, []error) {
	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	file, err := dec.ParseFile(filename, src, parser.ParseComments)
	if err != nil {
		return nil, []error{&Error{Code: ErrParseFailed, Message: err.Error()}}
	}

	var (
		errs       []error
		transforms []Transform
		decls      = make([]dst.Decl, 0, len(file.Decls))
	)

	for _, decl := range file.Decls {
		fn, ok := decl.(*dst.FuncDecl)
		if !ok {
			decls = append(decls, decl)
			continue
		}

		spec, matched, specErr := resolveSpec(fn, opts)
		if specErr != nil {
			errs = append(errs, positioned(specErr, fset, dec, fn))
			if opts.Mode == FailFast {
				return nil, errs
			}
			decls = append(decls, decl)
			continue
		}
		if !matched {
			decls = append(decls, decl)
			continue
		}

		sig, err := signature.Extract(fn)
		if err != nil {
			errs = append(errs, positioned(err, fset, dec, fn))
			if opts.Mode == FailFast {
				return nil, errs
			}
			decls = append(decls, decl)
			continue
		}

		stripDirective(fn)
		pair := synth.Synthesize(spec, sig, fn)

		pairSrc, err := renderPair(file.Name.Name, pair)
		if err != nil {
			errs = append(errs, &Error{Code: ErrRenderFailed, Message: err.Error()})
			if opts.Mode == FailFast {
				return nil, errs
			}
			decls = append(decls, decl)
			continue
		}

		transforms = append(transforms, Transform{
			File:     filename,
			Receiver: sig.ReceiverTypeName,
			Method:   sig.Name,
			Spec:     spec,
			Hash:     contract.RecordHash(filename, sig.ReceiverTypeName, sig.Name, spec, pairSrc),
		})
		decls = append(decls, pair.Wrapper, pair.RenamedOriginal)
	}

	if len(transforms) == 0 {
		if len(errs) > 0 {
			return &Result{Source: src}, errs
		}
		return &Result{Source: src}, nil
	}

	file.Decls = decls
	addImport(file, RuntimeImportPath)

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, file); err != nil {
		errs = append(errs, &Error{Code: ErrRenderFailed, Message: err.Error()})
		return nil, errs
	}

	// Finish with the imports tool so output is gofmt-clean regardless of
	// how the splice landed. FormatOnly: the runtime import is already
	// present, no resolution pass is wanted.
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		errs = append(errs, &Error{Code: ErrRenderFailed, Message: err.Error()})
		return nil, errs
	}

	return &Result{Source: out, Transforms: transforms, Changed: true}, errs
}

// resolveSpec determines whether a method is annotated, either by an
// in-source directive or by a policy rule.
func resolveSpec(fn *dst.FuncDecl, opts Options) (contract.AttributeSpec, bool, error) {
	if args, ok := findDirective(fn); ok {
		spec, err := attr.ParseWithDefault(args, opts.DefaultTiming)
		if err != nil {
			return contract.AttributeSpec{}, false, err
		}
		return spec, true, nil
	}

	if opts.Policy != nil {
		recv := signature.ReceiverTypeName(fn)
		if recv != "" {
			if spec, ok := opts.Policy.Match(recv, fn.Name.Name); ok {
				// A rule never wraps its own predicate; the wrapper
				// would recurse through the invariant call.
				if spec.InvariantName != fn.Name.Name {
					return spec, true, nil
				}
			}
		}
	}

	return contract.AttributeSpec{}, false, nil
}

// positioned wraps a directive or extraction error with the declaration's
// source position.
func positioned(err error, fset *token.FileSet, dec *decorator.Decorator, fn *dst.FuncDecl) error {
	code := "E001"
	switch e := err.(type) {
	case *attr.ParseError:
		code = e.Code
	case *signature.ExtractError:
		code = e.Code
	}

	var pos token.Position
	if astNode, ok := dec.Map.Ast.Nodes[fn]; ok {
		pos = fset.Position(astNode.Pos())
	}

	return &Error{Code: code, Message: err.Error(), Pos: pos}
}

// renderPair prints the generated pair as a standalone file fragment; the
// bytes feed the record hash so manifest identity covers the actual
// generated code.
func renderPair(pkg string, pair *contract.TransformationResult) ([]byte, error) {
	file := &dst.File{
		Name: dst.NewIdent(pkg),
		Decls: []dst.Decl{
			dst.Clone(pair.Wrapper).(dst.Decl),
			dst.Clone(pair.RenamedOriginal).(dst.Decl),
		},
	}

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// addImport ensures the file imports path, creating an import declaration
// after the package clause when the file has none.
func addImport(file *dst.File, path string) {
	quoted := fmt.Sprintf("%q", path)

	var importDecl *dst.GenDecl
	for _, decl := range file.Decls {
		gen, ok := decl.(*dst.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			continue
		}
		for _, spec := range gen.Specs {
			if imp, ok := spec.(*dst.ImportSpec); ok && imp.Path.Value == quoted {
				return
			}
		}
		if importDecl == nil {
			importDecl = gen
		}
	}

	spec := &dst.ImportSpec{
		Path: &dst.BasicLit{Kind: token.STRING, Value: quoted},
	}

	if importDecl != nil {
		importDecl.Specs = append(importDecl.Specs, spec)
		return
	}

	gen := &dst.GenDecl{
		Tok:   token.IMPORT,
		Specs: []dst.Spec{spec},
	}
	gen.Decs.Before = dst.EmptyLine
	file.Decls = append([]dst.Decl{gen}, file.Decls...)
}
