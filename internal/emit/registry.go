package emit

import (
	"bytes"
	"fmt"
	"text/template"
)

// HandlerRegistryEmitter emits a flat, human-readable table of every
// discovered handler regardless of kind — the lookup surface the other
// emitters assume exists, and the one artifact a debugging session reaches
// for first (spec §4.7, "handler registry").
type HandlerRegistryEmitter struct{}

func (HandlerRegistryEmitter) Name() string       { return "handler-registry" }
func (HandlerRegistryEmitter) OutputFile() string { return "relay_registry.g.go" }
func (HandlerRegistryEmitter) Priority() int       { return 50 }

func (HandlerRegistryEmitter) CanEmit(m Model) bool {
	return m.Options.EnableHandlerRegistry && len(m.Handlers) > 0
}

type registryEntry struct {
	Kind        string
	Name        string
	RequestType string
	HandlerType string
	MethodName  string
	Priority    int
}

var registryTemplate = template.Must(template.New("registry").Parse(`// Code generated by relaygen. DO NOT EDIT.
{{if .Documented}}
// GeneratedHandlerDescriptor records everything the generator discovered
// about one handler, independent of its dispatch kind.
{{end -}}
package {{.Package}}

type GeneratedHandlerDescriptor struct {
	Kind        string
	Name        string
	RequestType string
	HandlerType string
	MethodName  string
	Priority    int
}

// GeneratedHandlerRegistry lists every handler this generation run
// discovered and accepted.
var GeneratedHandlerRegistry = []GeneratedHandlerDescriptor{
{{- range .Entries}}
	{Kind: {{printf "%q" .Kind}}, Name: {{printf "%q" .Name}}, RequestType: {{printf "%q" .RequestType}}, HandlerType: {{printf "%q" .HandlerType}}, MethodName: {{printf "%q" .MethodName}}, Priority: {{.Priority}}},
{{- end}}
}
`))

func (HandlerRegistryEmitter) Emit(m Model) (string, error) {
	entries := make([]registryEntry, 0, len(m.Handlers))
	for _, h := range m.Handlers {
		entries = append(entries, registryEntry{
			Kind:        h.Kind.String(),
			Name:        h.Name,
			RequestType: typeName(h.RequestType),
			HandlerType: receiverTypeName(h),
			MethodName:  methodName(h),
			Priority:    h.Priority,
		})
	}

	var buf bytes.Buffer
	if err := registryTemplate.Execute(&buf, struct {
		Package    string
		Entries    []registryEntry
		Documented bool
	}{Package: packageName(m), Entries: entries, Documented: m.Options.IncludeDocumentation}); err != nil {
		return "", fmt.Errorf("emit: handler-registry: %w", err)
	}
	return buf.String(), nil
}
