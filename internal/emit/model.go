// Package emit implements the Code Emitters (C7): a fixed set of
// text/template-driven generators, each responsible for exactly one
// generated source file, run independently by the Pipeline Orchestrator
// (C9) against the Handler Discovery Result (C5).
package emit

import (
	"go/types"
	"strings"

	"relaygen/internal/discovery"
	"relaygen/internal/genconfig"
)

// Model is the read-only view every emitter renders from. It is built once
// per generation run and shared (never mutated) across emitters, including
// ones running concurrently (spec §5).
type Model struct {
	Handlers   []discovery.HandlerRecord
	Interfaces []discovery.InterfaceImplRecord
	Options    genconfig.Options
	Namespace  string
}

// Emitter is the contract every code emitter satisfies (spec §4.7).
type Emitter interface {
	Name() string
	OutputFile() string
	Priority() int
	CanEmit(Model) bool
	Emit(Model) (string, error)
}

// typeName renders t as a Go type expression; nil renders as "any" so a
// void request/response slot never produces invalid generated source.
func typeName(t types.Type) string {
	if t == nil {
		return "any"
	}
	return types.TypeString(t, nil)
}

// sanitizeIdent turns a dotted or qualified name into a legal Go
// identifier fragment; the emitters use it for the generated package name
// and for an endpoint's default route.
func sanitizeIdent(s string) string {
	replacer := strings.NewReplacer(
		".", "_", "/", "_", "-", "_",
		"<", "_", ">", "_", ",", "_",
		"[", "_", "]", "_", "`", "_",
		"*", "_", " ", "",
	)
	return replacer.Replace(s)
}

func requestHandlers(m Model) []discovery.HandlerRecord {
	return filterByKind(m, discovery.KindRequest)
}

func streamHandlers(m Model) []discovery.HandlerRecord {
	return filterByKind(m, discovery.KindStream)
}

func notificationHandlers(m Model) []discovery.HandlerRecord {
	return filterByKind(m, discovery.KindNotification)
}

func pipelineHandlers(m Model) []discovery.HandlerRecord {
	return filterByKind(m, discovery.KindPipeline)
}

func endpointHandlers(m Model) []discovery.HandlerRecord {
	return filterByKind(m, discovery.KindEndpoint)
}

// methodName returns the handler's declared method name, falling back to
// "Handle" only when no semantic function object is available (should not
// occur for a confirmed HandlerRecord, but keeps template execution from
// producing an empty selector).
func methodName(h discovery.HandlerRecord) string {
	if h.Func == nil {
		return "Handle"
	}
	return h.Func.Name()
}

func filterByKind(m Model, kind discovery.HandlerKind) []discovery.HandlerRecord {
	var out []discovery.HandlerRecord
	for _, h := range m.Handlers {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}
