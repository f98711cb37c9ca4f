package emit

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"
)

// PipelineRegistryEmitter emits the ordered pipeline-behavior registry:
// behaviors sorted by declared Order, ties broken by discovery (i.e.
// declaration) order for determinism (spec §4.7, "pipeline registry").
type PipelineRegistryEmitter struct{}

func (PipelineRegistryEmitter) Name() string       { return "pipeline-registry" }
func (PipelineRegistryEmitter) OutputFile() string { return "relay_pipeline.g.go" }
func (PipelineRegistryEmitter) Priority() int       { return 70 }

func (PipelineRegistryEmitter) CanEmit(m Model) bool {
	return m.Options.EnablePipelineRegistry && len(pipelineHandlers(m)) > 0
}

type pipelineEntry struct {
	HandlerType string
	MethodName  string
	Order       int
	Scope       string
}

var pipelineTemplate = template.Must(template.New("pipeline").Parse(`// Code generated by relaygen. DO NOT EDIT.

package {{.Package}}

// GeneratedPipelineBehavior is one entry in the ordered pipeline registry.
type GeneratedPipelineBehavior struct {
	Order int
	Scope string
	Apply func(next func() (any, error)) (any, error)
}

// GeneratedPipeline lists every discovered pipeline behavior, sorted by
// declared order (ties broken by declaration order).
var GeneratedPipeline = []GeneratedPipelineBehavior{
{{- range .Entries}}
	{
		Order: {{.Order}},
		Scope: {{printf "%q" .Scope}},
		Apply: func(next func() (any, error)) (any, error) {
			h := new({{.HandlerType}})
			return h.{{.MethodName}}(next)
		},
	},
{{- end}}
}
`))

func (PipelineRegistryEmitter) Emit(m Model) (string, error) {
	handlers := pipelineHandlers(m)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Order < handlers[j].Order
	})

	entries := make([]pipelineEntry, 0, len(handlers))
	for _, h := range handlers {
		entries = append(entries, pipelineEntry{
			HandlerType: receiverTypeName(h),
			MethodName:  methodName(h),
			Order:       h.Order,
			Scope:       h.Scope,
		})
	}

	var buf bytes.Buffer
	if err := pipelineTemplate.Execute(&buf, struct {
		Package string
		Entries []pipelineEntry
	}{Package: packageName(m), Entries: entries}); err != nil {
		return "", fmt.Errorf("emit: pipeline-registry: %w", err)
	}
	return buf.String(), nil
}
