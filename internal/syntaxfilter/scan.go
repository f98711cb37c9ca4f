// Package syntaxfilter implements the Syntax Filter (C2): a fast,
// lexical, order-preserving first pass that selects candidate methods and
// handler classes before the expensive semantic model is consulted.
package syntaxfilter

import (
	"context"
	"fmt"
	"go/ast"
	"strings"
)

// cancelCheckEvery matches spec §4.1's "after every 256 visited nodes".
const cancelCheckEvery = 256

var classSuffixes = []string{"RequestHandler", "NotificationHandler", "StreamHandler"}

// Scan walks tree and returns every plausible candidate in document order
// (spec §4.1). It is pure and side-effect free; semantic confirmation
// happens later in the Discovery Engine (C5).
func Scan(ctx context.Context, tree *ast.File) ([]Candidate, error) {
	var candidates []Candidate
	seen := make(map[ast.Node]bool)
	visited := 0
	var cancelErr error

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("relay: cancelled: %w", err)
	}

	ast.Inspect(tree, func(n ast.Node) bool {
		if cancelErr != nil {
			return false
		}
		visited++
		if visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				cancelErr = fmt.Errorf("relay: cancelled: %w", err)
				return false
			}
		}

		switch decl := n.(type) {
		case *ast.FuncDecl:
			if decl.Doc == nil || seen[decl] {
				return true
			}
			for _, directive := range markersOf(decl.Doc) {
				candidates = append(candidates, Candidate{
					Kind:   CandidateMethod,
					Func:   decl,
					Marker: directive.Marker,
					Args:   directive.Args,
					File:   tree,
				})
			}
			seen[decl] = true

		case *ast.TypeSpec:
			if seen[decl] {
				return true
			}
			structType, ok := decl.Type.(*ast.StructType)
			if !ok || structType.Fields == nil {
				return true
			}
			if base, ok := matchingEmbeddedBase(structType); ok {
				candidates = append(candidates, Candidate{
					Kind:     CandidateClass,
					Type:     decl,
					BaseName: base,
					File:     tree,
				})
			}
			seen[decl] = true
		}
		return true
	})

	if cancelErr != nil {
		return nil, cancelErr
	}
	return candidates, nil
}

func markersOf(doc *ast.CommentGroup) []markerDirective {
	var out []markerDirective
	for _, c := range doc.List {
		if directive, ok := parseMarkerLine(c.Text); ok {
			out = append(out, directive)
		}
	}
	return out
}

// matchingEmbeddedBase reports whether struct declares an embedded field
// whose type name textually ends in one of classSuffixes (the Go
// analogue of "base list textually mentions IRequestHandler", since Go
// structs have no base-class list, only embedding).
func matchingEmbeddedBase(st *ast.StructType) (string, bool) {
	for _, field := range st.Fields.List {
		if len(field.Names) != 0 {
			continue // not an embedded field
		}
		name := exprTypeName(field.Type)
		for _, suffix := range classSuffixes {
			if strings.HasSuffix(name, suffix) {
				return suffix, true
			}
		}
	}
	return "", false
}

// exprTypeName extracts the trailing identifier from a (possibly
// pointer/generic/qualified) type expression, e.g. "*pkg.Foo[T]" -> "Foo".
func exprTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return exprTypeName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return exprTypeName(t.X)
	case *ast.IndexListExpr:
		return exprTypeName(t.X)
	default:
		return ""
	}
}
