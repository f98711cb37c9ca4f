package genconfig

import (
	"fmt"
	"go/token"
	"strings"

	"relaygen/internal/diag"
)

const (
	minParallelism     = 1
	maxParallelism     = 64
	defaultParallelism = 4
)

// Validate checks opts against spec §3's bounds, reporting a diagnostic
// for every violation and returning a corrected copy with invalid values
// silently clamped for downstream use (spec: "invalid -> diagnostic AND
// silent clamp"). It panics only when opts is nil — a programmer error at
// the API boundary, not a user-facing configuration mistake (spec §9).
func Validate(opts *Options, sink diag.Sink) Options {
	if opts == nil {
		panic("genconfig: nil options")
	}
	out := *opts

	if out.MaxDegreeOfParallelism < minParallelism || out.MaxDegreeOfParallelism > maxParallelism {
		report(sink, diag.ConfigConflict, fmt.Sprintf(
			"max_degree_of_parallelism %d is outside the valid range [%d, %d]; clamped",
			out.MaxDegreeOfParallelism, minParallelism, maxParallelism))
		out.MaxDegreeOfParallelism = clamp(out.MaxDegreeOfParallelism, minParallelism, maxParallelism)
		if opts.MaxDegreeOfParallelism == 0 {
			out.MaxDegreeOfParallelism = defaultParallelism
		}
	}

	if out.CustomNamespace != "" && !isDottedIdentifier(out.CustomNamespace) {
		report(sink, diag.ConfigConflict, fmt.Sprintf(
			"custom_namespace %q is not a dotted identifier", out.CustomNamespace))
		out.CustomNamespace = ""
	}

	if out.AssemblyName == "" {
		out.AssemblyName = "Relay.Generated"
	}

	if !out.AnyEmitterEnabled() {
		report(sink, diag.ConfigConflict, "at least one emitter must be enabled")
	}

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isDottedIdentifier reports whether every dot-separated segment of s is a
// Go identifier according to go/token.IsIdentifier, so no regular
// expression library is introduced for this one check. That grammar is not
// the ASCII pattern [A-Za-z_][A-Za-z0-9_]*: it also accepts non-ASCII
// Unicode letters and digits, and it rejects Go keywords such as "type".
func isDottedIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, segment := range strings.Split(s, ".") {
		if segment == "" || !token.IsIdentifier(segment) {
			return false
		}
	}
	return true
}

func report(sink diag.Sink, id diag.ID, msg string) {
	if sink == nil {
		return
	}
	sink.Report(diag.New(id, token.Position{}, msg))
}
