package emit

import (
	"bytes"
	"fmt"
	"text/template"
)

// DIRegistrationEmitter emits the constructor-registration file: a
// singleton registration of the root relay.Relay dispatcher plus one
// scoped relay.Registrar.Register call per discovered handler type, keyed
// by the request/notification type it handles; handlers without a request
// type (pipeline behaviors) are not registered (spec
// §4.7, "DI registration" — "(i) a registration of a root dispatcher
// singleton; (ii) a scoped registration of each discovered handler type").
type DIRegistrationEmitter struct{}

func (DIRegistrationEmitter) Name() string       { return "di-registration" }
func (DIRegistrationEmitter) OutputFile() string { return "relay_registrations.g.go" }
func (DIRegistrationEmitter) Priority() int       { return 100 }

func (DIRegistrationEmitter) CanEmit(m Model) bool {
	return m.Options.EnableDI
}

type diEntry struct {
	Key         string
	HandlerType string
}

var diTemplate = template.Must(template.New("di").Parse(`// Code generated by relaygen. DO NOT EDIT.

package {{.Package}}

import (
	"context"
	"fmt"
	"iter"

	"relay"
)

// generatedRelay is the root relay.Relay implementation bound into the DI
// container as a singleton; it delegates to whichever of the other
// generated files were produced this run.
type generatedRelay struct{}

func (generatedRelay) Send(ctx context.Context, req any) (any, error) {
{{- if .HasDispatcher}}
	return GeneratedDispatch(ctx, req, "")
{{- else}}
	return nil, fmt.Errorf("relay: no dispatcher was generated for %T", req)
{{- end}}
}

func (generatedRelay) Publish(ctx context.Context, note any) error {
{{- if .HasNotificationFanout}}
	return GeneratedPublish(ctx, note)
{{- else}}
	return fmt.Errorf("relay: no notification dispatcher was generated for %T", note)
{{- end}}
}

func (generatedRelay) Stream(ctx context.Context, req any) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		yield(nil, fmt.Errorf("relay: no stream dispatcher was generated for %T", req))
	}
}

// RegisterGeneratedHandlers binds the root dispatcher singleton and every
// discovered handler's constructor into reg, keyed by its fully qualified
// request/notification type.
func RegisterGeneratedHandlers(reg relay.Registrar) {
	reg.Register("relay.Relay", func() any { return &generatedRelay{} })
{{- range .Entries}}
	reg.Register({{printf "%q" .Key}}, func() any { return new({{.HandlerType}}) })
{{- end}}
}
`))

func (DIRegistrationEmitter) Emit(m Model) (string, error) {
	var entries []diEntry
	seen := make(map[string]bool)
	for _, h := range m.Handlers {
		if h.RequestType == nil || h.Func == nil {
			continue
		}
		key := typeName(h.RequestType)
		handlerType := receiverTypeName(h)
		if seen[key+"|"+handlerType] {
			continue
		}
		seen[key+"|"+handlerType] = true
		entries = append(entries, diEntry{
			Key:         key,
			HandlerType: handlerType,
		})
	}

	hasDispatcher := m.Options.EnableOptimizedDispatcher && len(requestHandlers(m)) > 0
	hasNotificationFanout := m.Options.EnableNotificationDispatcher && len(notificationHandlers(m)) > 0

	var buf bytes.Buffer
	if err := diTemplate.Execute(&buf, struct {
		Package               string
		Entries               []diEntry
		HasDispatcher         bool
		HasNotificationFanout bool
	}{
		Package:               packageName(m),
		Entries:               entries,
		HasDispatcher:         hasDispatcher,
		HasNotificationFanout: hasNotificationFanout,
	}); err != nil {
		return "", fmt.Errorf("emit: di-registration: %w", err)
	}
	return buf.String(), nil
}

func packageName(m Model) string {
	if m.Namespace != "" {
		return sanitizeIdent(m.Namespace)
	}
	return "relaygenerated"
}

// receiverTypeName renders the handler method's unqualified receiver type
// name, suitable for following a `new(...)` call in generated source.
func receiverTypeName(h interface{ ContainingTypeName() string }) string {
	return h.ContainingTypeName()
}
