// Package fallback implements the Fallback Emitter (C8): a degraded
// stand-in substituted for any primary emitter (internal/emit) that panics
// or errors mid-run, so one broken emitter never blanks out an entire
// generation pass (spec §4.8). It intentionally emits far less than its
// primary counterpart — just enough for the package to still compile.
package fallback

import (
	"bytes"
	"fmt"
	"text/template"
)

var fallbackTemplate = template.Must(template.New("fallback").Parse(`// Code generated by relaygen. DO NOT EDIT.
// This file is a fallback: {{.EmitterName}} failed to emit normally.
//
// Reason: {{.Reason}}

package {{.Package}}

func init() {
	relayGeneratedFallback("{{.EmitterName}}", {{printf "%q" .Reason}})
}

func relayGeneratedFallback(emitter, reason string) {
	_ = emitter
	_ = reason
}
`))

// Emit renders the degraded replacement for the named emitter's output
// file, recording why the primary attempt could not be used.
func Emit(packageName, emitterName string, cause error) (string, error) {
	reason := "unknown failure"
	if cause != nil {
		reason = cause.Error()
	}
	var buf bytes.Buffer
	err := fallbackTemplate.Execute(&buf, struct {
		Package     string
		EmitterName string
		Reason      string
	}{Package: packageName, EmitterName: emitterName, Reason: reason})
	if err != nil {
		return "", fmt.Errorf("fallback: render %s: %w", emitterName, err)
	}
	return buf.String(), nil
}

// Dispatcher produces the minimal fallback body for a dispatcher-shaped
// emitter: a function with the expected name that always reports the
// not-generated condition rather than silently doing nothing: its body
// returns an error carrying the reason (spec §4.8).
func Dispatcher(packageName, reason string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `// Code generated by relaygen. DO NOT EDIT.
// This file is a fallback dispatcher: generation did not complete normally.

package %s

import "errors"

func GeneratedDispatch(ctx any, req any) (any, error) {
	return nil, errors.New(%q)
}
`, packageName, "relay: not generated, reason: "+reason)
	return buf.String()
}
