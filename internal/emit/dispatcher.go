package emit

import (
	"bytes"
	"fmt"
	"text/template"
)

// OptimizedDispatcherEmitter emits a type-switch based Send implementation:
// O(1) dispatch via a compiler-built jump table rather than the reflective
// lookup a hand-written mediator would need (spec §4.7, "optimized
// dispatcher"). When UseAggressiveInlining is set the generated function
// carries a //go:inline-style hint comment; Go has no attribute-based
// inlining directive, so this is advisory text only.
type OptimizedDispatcherEmitter struct{}

func (OptimizedDispatcherEmitter) Name() string       { return "optimized-dispatcher" }
func (OptimizedDispatcherEmitter) OutputFile() string { return "relay_dispatcher.g.go" }
func (OptimizedDispatcherEmitter) Priority() int       { return 90 }

func (OptimizedDispatcherEmitter) CanEmit(m Model) bool {
	return m.Options.EnableOptimizedDispatcher && len(requestHandlers(m)) > 0
}

// namedDispatch is one named handler competing for the same request type;
// it only appears when a request type has more than one registered
// handler (spec §4.7, "selection is by the name attribute").
type namedDispatch struct {
	Name        string
	HandlerType string
	MethodName  string
}

type dispatchCase struct {
	RequestType string
	HandlerType string
	MethodName  string
	Named       []namedDispatch // set instead of HandlerType/MethodName when len > 1
}

var dispatcherTemplate = template.Must(template.New("dispatcher").Parse(`// Code generated by relaygen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"fmt"
)
{{if .AggressiveInlining}}
// GeneratedDispatch is hinted for inlining by the generator; Go itself
// decides whether to honor it.
{{end -}}
// GeneratedDispatch implements O(1) request dispatch via a type switch
// compiled directly into a jump table, avoiding a reflective handler
// lookup per call. name selects among multiple handlers registered for
// the same request type; pass "" when only one handler is registered.
func GeneratedDispatch(ctx context.Context, req any, name string) (any, error) {
	switch v := req.(type) {
{{- range .Cases}}
	case {{.RequestType}}:
{{- if .Named}}
		switch name {
{{- range .Named}}
		case {{printf "%q" .Name}}:
			h := new({{.HandlerType}})
			return h.{{.MethodName}}(ctx, v)
{{- end}}
		default:
			return nil, fmt.Errorf("relay: no handler named %q registered for %T", name, req)
		}
{{- else}}
		h := new({{.HandlerType}})
		return h.{{.MethodName}}(ctx, v)
{{- end}}
{{- end}}
	default:
		return nil, fmt.Errorf("relay: no generated handler registered for %T", req)
	}
}
`))

func (OptimizedDispatcherEmitter) Emit(m Model) (string, error) {
	order := []string{}
	byType := make(map[string][]namedDispatch)
	for _, h := range requestHandlers(m) {
		if h.RequestType == nil {
			continue
		}
		key := typeName(h.RequestType)
		if _, ok := byType[key]; !ok {
			order = append(order, key)
		}
		byType[key] = append(byType[key], namedDispatch{
			Name:        h.Name,
			HandlerType: receiverTypeName(h),
			MethodName:  methodName(h),
		})
	}

	var cases []dispatchCase
	for _, reqType := range order {
		entries := byType[reqType]
		if len(entries) == 1 {
			cases = append(cases, dispatchCase{
				RequestType: reqType,
				HandlerType: entries[0].HandlerType,
				MethodName:  entries[0].MethodName,
			})
			continue
		}
		cases = append(cases, dispatchCase{RequestType: reqType, Named: entries})
	}

	var buf bytes.Buffer
	err := dispatcherTemplate.Execute(&buf, struct {
		Package            string
		Cases              []dispatchCase
		AggressiveInlining bool
	}{
		Package:            packageName(m),
		Cases:              cases,
		AggressiveInlining: m.Options.UseAggressiveInlining,
	})
	if err != nil {
		return "", fmt.Errorf("emit: optimized-dispatcher: %w", err)
	}
	return buf.String(), nil
}
