// Package testutil provides shared helpers for tests that need parsed Go
// declarations.
package testutil

import (
	"bytes"
	"go/parser"
	"go/token"
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// ParseFile parses src as a single Go source file with comments attached.
func ParseFile(t *testing.T, src string) *dst.File {
	t.Helper()

	dec := decorator.NewDecorator(token.NewFileSet())
	file, err := dec.ParseFile("src.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parsing test source: %v", err)
	}
	return file
}

// ParseMethod parses src and returns its first function declaration.
func ParseMethod(t *testing.T, src string) *dst.FuncDecl {
	t.Helper()

	file := ParseFile(t, src)
	for _, decl := range file.Decls {
		if fn, ok := decl.(*dst.FuncDecl); ok {
			return fn
		}
	}
	t.Fatalf("no function declaration in test source")
	return nil
}

// Render prints a dst file back to source text.
func Render(t *testing.T, file *dst.File) string {
	t.Helper()

	var buf bytes.Buffer
	if err := decorator.Fprint(&buf, file); err != nil {
		t.Fatalf("rendering test source: %v", err)
	}
	return buf.String()
}

// RenderDecls prints the given declarations as a standalone file in package
// pkg. Useful for asserting on synthesized method pairs.
func RenderDecls(t *testing.T, pkg string, decls ...dst.Decl) string {
	t.Helper()

	cloned := make([]dst.Decl, len(decls))
	for i, d := range decls {
		cloned[i] = dst.Clone(d).(dst.Decl)
	}
	file := &dst.File{
		Name:  dst.NewIdent(pkg),
		Decls: cloned,
	}
	return Render(t, file)
}
