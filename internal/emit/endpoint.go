package emit

import (
	"bytes"
	"fmt"
	"text/template"
)

// EndpointMetadataEmitter emits a static table describing every handler
// marked for HTTP exposure: its route, request type, and backing handler
// (spec §4.7, "endpoint metadata").
type EndpointMetadataEmitter struct{}

func (EndpointMetadataEmitter) Name() string       { return "endpoint-metadata" }
func (EndpointMetadataEmitter) OutputFile() string { return "relay_endpoints.g.go" }
func (EndpointMetadataEmitter) Priority() int       { return 60 }

func (EndpointMetadataEmitter) CanEmit(m Model) bool {
	return m.Options.EnableEndpointMetadata && len(endpointHandlers(m)) > 0
}

type endpointEntry struct {
	Route       string
	RequestType string
	HandlerType string
	MethodName  string
}

var endpointTemplate = template.Must(template.New("endpoint").Parse(`// Code generated by relaygen. DO NOT EDIT.

package {{.Package}}

// GeneratedEndpoint describes one handler exposed as an HTTP endpoint.
type GeneratedEndpoint struct {
	Route       string
	RequestType string
	Invoke      func(req any) (any, error)
}

// GeneratedEndpoints lists every handler marked for HTTP exposure.
var GeneratedEndpoints = []GeneratedEndpoint{
{{- range .Entries}}
	{
		Route:       {{printf "%q" .Route}},
		RequestType: {{printf "%q" .RequestType}},
		Invoke: func(req any) (any, error) {
			h := new({{.HandlerType}})
			return h.{{.MethodName}}(req.({{.RequestType}}))
		},
	},
{{- end}}
}
`))

func (EndpointMetadataEmitter) Emit(m Model) (string, error) {
	var entries []endpointEntry
	for _, h := range endpointHandlers(m) {
		route := h.Route
		if route == "" {
			route = "/" + sanitizeIdent(methodName(h))
		}
		entries = append(entries, endpointEntry{
			Route:       route,
			RequestType: typeName(h.RequestType),
			HandlerType: receiverTypeName(h),
			MethodName:  methodName(h),
		})
	}

	var buf bytes.Buffer
	if err := endpointTemplate.Execute(&buf, struct {
		Package string
		Entries []endpointEntry
	}{Package: packageName(m), Entries: entries}); err != nil {
		return "", fmt.Errorf("emit: endpoint-metadata: %w", err)
	}
	return buf.String(), nil
}
