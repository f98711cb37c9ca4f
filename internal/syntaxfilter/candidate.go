package syntaxfilter

import "go/ast"

// CandidateKind distinguishes the two shapes C2 discovers.
type CandidateKind int

const (
	// CandidateMethod is a method decorated with a //relay: marker.
	CandidateMethod CandidateKind = iota
	// CandidateClass is a struct type whose embedded-field list textually
	// names a handler interface.
	CandidateClass
)

// Candidate is a syntactically plausible declaration, not yet semantically
// confirmed (spec §3).
type Candidate struct {
	Kind CandidateKind

	// Func and Marker/Args are set when Kind == CandidateMethod.
	Func   *ast.FuncDecl
	Marker MarkerKind
	Args   string

	// Type and BaseName are set when Kind == CandidateClass.
	Type     *ast.TypeSpec
	BaseName string // the matched embedded-field identifier, e.g. "RequestHandler"

	File *ast.File
}

// Node returns the underlying syntax node, used for declaration-identity
// deduplication (spec I4).
func (c Candidate) Node() ast.Node {
	if c.Kind == CandidateClass {
		return c.Type
	}
	return c.Func
}
