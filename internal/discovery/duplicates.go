package discovery

import (
	"fmt"

	"relaygen/internal/diag"
)

// singleHandlerKinds are the kinds where exactly one handler may claim a
// given request type — unlike notifications, which are deliberately
// fanned out to every registered handler and so are exempt from this
// bucketing entirely.
func singleHandlerKind(k HandlerKind) bool {
	return k == KindRequest || k == KindStream || k == KindEndpoint
}

// detectDuplicates buckets request/stream/endpoint handlers by the
// (kind, request_type, name_or_null) triple and pipeline behaviors by
// (containing type, order, scope) (spec §4.3, "Duplicate detection"). Kind
// is part of the bucket key so a method carrying both Handle and
// ExposeAsEndpoint for the same request type — two independent records by
// design (DESIGN.md) — never collides with itself; only two handlers
// competing for the *same* dispatch kind are ambiguous. Per invariant I2,
// every record in an oversized bucket is KEPT in the model — a diagnostic
// is attached to each one, but discovery never drops a record solely for
// being a duplicate; it is the emitters' and the generated runtime's job
// to deal with an ambiguous registration at dispatch time.
func detectDuplicates(handlers []HandlerRecord, sink diag.Sink) []HandlerRecord {
	byRequest := make(map[string][]int) // "kind|requestType|name" -> indices, in discovery order
	pipelineBucket := make(map[string][]int)

	for i, h := range handlers {
		if !singleHandlerKind(h.Kind) || h.RequestType == nil {
			continue
		}
		key := h.Kind.String() + "|" + typeKey(h.RequestType) + "|" + h.Name
		byRequest[key] = append(byRequest[key], i)
	}
	for i, h := range handlers {
		if h.Kind != KindPipeline {
			continue
		}
		key := fmt.Sprintf("%s|%d|%s", h.ContainingTypeName(), h.Order, h.Scope)
		pipelineBucket[key] = append(pipelineBucket[key], i)
	}

	for _, idxs := range byRequest {
		if len(idxs) < 2 {
			continue
		}
		named := handlers[idxs[0]].Name != ""
		id := diag.DuplicateHandler
		msg := "duplicate handler registered for request type %q"
		if named {
			id = diag.NamedHandlerConflict
			msg = "handler name %q conflicts with another handler registered for the same request type"
		}
		key := typeKey(handlers[idxs[0]].RequestType)
		arg := key
		if named {
			arg = handlers[idxs[0]].Name
		}
		for _, i := range idxs {
			sink.Report(diag.New(id, handlers[i].Pos, fmt.Sprintf(msg, arg)))
		}
	}

	for _, idxs := range pipelineBucket {
		if len(idxs) < 2 {
			continue
		}
		for _, i := range idxs {
			h := handlers[i]
			sink.Report(diag.New(diag.DuplicatePipelineOrder, h.Pos, fmt.Sprintf(
				"pipeline behavior order %d conflicts with another behavior declared in the same scope of %s",
				h.Order, h.ContainingTypeName())))
		}
	}

	return handlers
}
