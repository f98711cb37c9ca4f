// Package rules is the Validation Rules library (C4): a stateless set of
// predicates over method signatures, invoked from the Discovery Engine
// (per-handler shape checks) and from a post-discovery global pass
// (duplicate/conflict detection lives in internal/discovery, which owns
// the bucketing state these rules do not need).
package rules

import (
	"go/token"
	"go/types"

	"relaygen/internal/diag"
)

// Predicates supplies the type-identity checks that depend on the loaded
// relay runtime package, so this package itself stays free of any
// dependency on a specific semantic model.
type Predicates struct {
	IsRequest       func(types.Type) bool
	IsNotification  func(types.Type) bool
	IsStreamRequest func(types.Type) bool
}

// IsContextType reports whether t is context.Context — the Go analogue of
// the spec's "cancellation token" parameter.
func IsContextType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == "context" && obj.Name() == "Context"
}

// IsErrorType reports whether t is the predeclared error interface.
func IsErrorType(t types.Type) bool {
	errType := types.Universe.Lookup("error")
	if errType == nil {
		return false
	}
	return types.Identical(t, errType.Type())
}

// IsIterSeq2 reports whether t is iter.Seq2[_, _] — the idiomatic Go
// shape for "lazy sequence of T" (spec's async-stream return type).
func IsIterSeq2(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == "iter" && obj.Name() == "Seq2"
}

func hasLeadingContextParam(sig *types.Signature) bool {
	return sig.Params().Len() > 0 && IsContextType(sig.Params().At(0).Type())
}

func nonContextParams(sig *types.Signature) []types.Type {
	var out []types.Type
	for i := 0; i < sig.Params().Len(); i++ {
		pt := sig.Params().At(i).Type()
		if !IsContextType(pt) {
			out = append(out, pt)
		}
	}
	return out
}

// CheckPriority implements the "priority sanity" rule: |priority| > 1000
// is a performance warning, never an error (spec §4.4).
func CheckPriority(priority int, pos token.Position) *diag.Diagnostic {
	if priority > 1000 || priority < -1000 {
		d := diag.New(diag.PriorityOutOfRange, pos, "handler priority is outside the recommended range [-1000, 1000]")
		return &d
	}
	return nil
}

// CheckAccessibility implements the accessibility rule. Go has no
// `private` method modifier reachable from another package; the REDESIGN
// resolution (DESIGN.md) reinterprets "must not be private" as "the
// handler method must be exported", the only accessibility distinction
// Go itself enforces across package boundaries.
func CheckAccessibility(exported bool, pos token.Position) *diag.Diagnostic {
	if !exported {
		d := diag.New(diag.HandlerNotAccessible, pos, "handler method must be exported")
		return &d
	}
	return nil
}

// CheckCancellationParam implements the non-fatal "missing cancellation
// parameter" warning.
func CheckCancellationParam(sig *types.Signature, pos token.Position) *diag.Diagnostic {
	if !hasLeadingContextParam(sig) {
		d := diag.New(diag.MissingCancellationParam, pos, "handler does not declare a context.Context parameter")
		return &d
	}
	return nil
}
