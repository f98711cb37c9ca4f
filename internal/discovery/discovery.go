// Package discovery implements the Handler Discovery Engine (C5): it takes
// the syntactically plausible candidates from C2, confirms them against the
// semantic model (C1) and the shape rules (C4), and produces the closed set
// of Handler Records and Interface-Implementation Records the emitters (C7)
// consume.
package discovery

import (
	"context"
	"fmt"
	"go/token"
	"go/types"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"relaygen/internal/diag"
	"relaygen/internal/rules"
	"relaygen/internal/semctx"
	"relaygen/internal/syntaxfilter"
)

// HandlerKind is the closed set of roles a confirmed handler can play.
type HandlerKind int

const (
	KindRequest HandlerKind = iota
	KindStream
	KindNotification
	KindPipeline
	KindEndpoint
)

func (k HandlerKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindStream:
		return "stream"
	case KindNotification:
		return "notification"
	case KindPipeline:
		return "pipeline"
	case KindEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// HandlerRecord describes one semantically confirmed handler method (spec
// §3, "Handler Record").
type HandlerRecord struct {
	Candidate syntaxfilter.Candidate
	Kind      HandlerKind
	Func      *types.Func
	Pos       token.Position

	Name     string // attribute-supplied name, "" if unnamed
	Priority int
	Order    int
	Scope    string
	Route    string

	RequestType  types.Type
	ResponseType types.Type
}

// ContainingTypeName returns the unqualified name of the receiver type
// declaring the handler method, used both as the pipeline
// duplicate-bucketing key and, by the emitters, as a generated
// constructor's type reference.
func (h HandlerRecord) ContainingTypeName() string {
	if h.Func == nil {
		return ""
	}
	sig, ok := h.Func.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return h.Func.Name()
	}
	recv := sig.Recv().Type()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}
	if named, ok := recv.(*types.Named); ok {
		return named.Obj().Name()
	}
	return typeKey(recv)
}

// InterfaceImplRecord describes a struct type discovered by embedding a
// handler-shaped base field rather than by marker (spec §3, "Interface
// Implementation Record").
type InterfaceImplRecord struct {
	Candidate syntaxfilter.Candidate
	BaseName  string
	Named     *types.Named
	Pos       token.Position
}

// Result is the Handler Discovery Result (spec §3): the closed set the
// emitters consume, plus whatever handlers were rejected along the way (the
// rejections themselves were already reported to the diagnostic sink).
type Result struct {
	Handlers   []HandlerRecord
	Interfaces []InterfaceImplRecord
}

// parallelThreshold is the candidate count at which discovery switches from
// sequential to parallel traversal (spec §5): below it the per-candidate
// work is cheap enough that goroutine setup would dominate. The parallel
// worker count is clamped to [minWorkers, maxWorkers].
const (
	parallelThreshold = 10
	minWorkers        = 2
	maxWorkers        = 8
)

// Discover confirms every candidate against the semantic model and the
// shape rules, reporting a diagnostic for every rejection and returning the
// accepted records plus detected duplicates (also reported as diagnostics).
func Discover(ctx context.Context, sem *semctx.Context, candidates []syntaxfilter.Candidate, preds rules.Predicates, sink diag.Sink, maxDegreeOfParallelism int) (Result, error) {
	if len(candidates) < parallelThreshold || maxDegreeOfParallelism <= 1 {
		return discoverSequential(ctx, sem, candidates, preds, sink)
	}
	return discoverParallel(ctx, sem, candidates, preds, sink, maxDegreeOfParallelism)
}

func discoverSequential(ctx context.Context, sem *semctx.Context, candidates []syntaxfilter.Candidate, preds rules.Predicates, sink diag.Sink) (Result, error) {
	var out partial
	for _, c := range candidates {
		if err := sem.CheckCancel(); err != nil {
			return Result{}, err
		}
		if err := processCandidate(sem, c, preds, sink, &out); err != nil {
			return Result{}, err
		}
	}
	return finalize(out, sink), nil
}

func discoverParallel(ctx context.Context, sem *semctx.Context, candidates []syntaxfilter.Candidate, preds rules.Predicates, sink diag.Sink, maxDegreeOfParallelism int) (Result, error) {
	workers := clamp(maxDegreeOfParallelism, minWorkers, maxWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var out partial

	for _, c := range candidates {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := sem.CheckCancel(); err != nil {
				return err
			}
			var local partial
			if err := processCandidate(sem, c, preds, sink, &local); err != nil {
				return err
			}
			mu.Lock()
			out.handlers = append(out.handlers, local.handlers...)
			out.interfaces = append(out.interfaces, local.interfaces...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return finalize(out, sink), nil
}

type partial struct {
	handlers   []HandlerRecord
	interfaces []InterfaceImplRecord
}

func processCandidate(sem *semctx.Context, c syntaxfilter.Candidate, preds rules.Predicates, sink diag.Sink, out *partial) error {
	info, err := sem.GetSemanticModel(c.File)
	if err != nil {
		if cerr := sem.CheckCancel(); cerr != nil {
			return cerr
		}
		name, pos := "<unknown>", token.NoPos
		if c.Func != nil {
			name, pos = c.Func.Name.Name, c.Func.Pos()
		} else if c.Type != nil {
			name, pos = c.Type.Name.Name, c.Type.Pos()
		}
		sink.Report(diag.New(diag.GeneratorError, position(sem, pos), fmt.Sprintf("cannot resolve the semantic model for %s: %v", name, err)))
		return nil
	}

	switch c.Kind {
	case syntaxfilter.CandidateMethod:
		rec, ok := classifyMethod(sem, info, c, preds, sink)
		if ok {
			out.handlers = append(out.handlers, rec)
		}
	case syntaxfilter.CandidateClass:
		rec, ok := classifyClass(sem, info, c, sink)
		if ok {
			out.interfaces = append(out.interfaces, rec)
		}
	}
	return nil
}

func classifyMethod(sem *semctx.Context, info *types.Info, c syntaxfilter.Candidate, preds rules.Predicates, sink diag.Sink) (HandlerRecord, bool) {
	pos := position(sem, c.Func.Pos())

	obj, ok := info.Defs[c.Func.Name]
	if !ok || obj == nil {
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, "handler method has no resolvable semantic declaration"))
		return HandlerRecord{}, false
	}
	fn, ok := obj.(*types.Func)
	if !ok {
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, "handler declaration is not a function"))
		return HandlerRecord{}, false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, "handler declaration has no resolvable signature"))
		return HandlerRecord{}, false
	}

	if d := rules.CheckAccessibility(fn.Exported(), pos); d != nil {
		sink.Report(*d)
		return HandlerRecord{}, false
	}

	attrs := parseAttributeArgs(c.Args)
	rec := HandlerRecord{
		Candidate: c,
		Func:      fn,
		Pos:       pos,
		Name:      attrs["name"],
		Scope:     attrs["scope"],
		Route:     attrs["route"],
	}
	rec.Priority = attrs.intOr("priority", 0)
	rec.Order = attrs.intOr("order", 0)

	if d := rules.CheckPriority(rec.Priority, pos); d != nil {
		sink.Report(*d)
	}

	switch c.Marker {
	case syntaxfilter.MarkerHandle:
		if rules.IsIterSeq2(streamReturnOf(sig)) {
			shape, diags := rules.CheckStreamHandler(sig, pos, preds)
			reportAll(sink, diags)
			if hasFatal(diags) {
				return HandlerRecord{}, false
			}
			rec.Kind = KindStream
			rec.RequestType, rec.ResponseType = shape.Request, shape.Response
		} else {
			shape, diags := rules.CheckRequestHandler(sig, pos, preds)
			reportAll(sink, diags)
			if hasFatal(diags) {
				return HandlerRecord{}, false
			}
			rec.Kind = KindRequest
			rec.RequestType, rec.ResponseType = shape.Request, shape.Response
		}
	case syntaxfilter.MarkerNotification:
		noteType, diags := rules.CheckNotificationHandler(sig, pos, preds)
		reportAll(sink, diags)
		if hasFatal(diags) {
			return HandlerRecord{}, false
		}
		rec.Kind = KindNotification
		rec.RequestType = noteType
	case syntaxfilter.MarkerPipeline:
		diags := rules.CheckPipeline(sig, pos)
		reportAll(sink, diags)
		if hasFatal(diags) {
			return HandlerRecord{}, false
		}
		rec.Kind = KindPipeline
	case syntaxfilter.MarkerExposeAsEndpoint:
		diags := rules.CheckEndpoint(sig, pos)
		reportAll(sink, diags)
		if hasFatal(diags) {
			return HandlerRecord{}, false
		}
		rec.Kind = KindEndpoint
		if sig.Params().Len() == 1 {
			rec.RequestType = sig.Params().At(0).Type()
		}
	default:
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, fmt.Sprintf("unrecognized marker %q", c.Marker)))
		return HandlerRecord{}, false
	}

	return rec, true
}

func classifyClass(sem *semctx.Context, info *types.Info, c syntaxfilter.Candidate, sink diag.Sink) (InterfaceImplRecord, bool) {
	pos := position(sem, c.Type.Pos())
	obj, ok := info.Defs[c.Type.Name]
	if !ok || obj == nil {
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, "structural handler type has no resolvable semantic declaration"))
		return InterfaceImplRecord{}, false
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		sink.Report(diag.New(diag.InvalidHandlerSignature, pos, "structural handler type is not a named type"))
		return InterfaceImplRecord{}, false
	}
	return InterfaceImplRecord{Candidate: c, BaseName: c.BaseName, Named: named, Pos: pos}, true
}

// streamReturnOf returns the single result type of sig, or nil if sig does
// not return exactly one value (used only to probe for the iter.Seq2 shape
// before committing to a request-vs-stream classification).
func streamReturnOf(sig *types.Signature) types.Type {
	if sig.Results().Len() != 1 {
		return nil
	}
	return sig.Results().At(0).Type()
}

func position(sem *semctx.Context, pos token.Pos) token.Position {
	if sem.Pkg == nil || sem.Pkg.Fset == nil {
		return token.Position{}
	}
	return sem.Pkg.Fset.Position(pos)
}

func reportAll(sink diag.Sink, diags []diag.Diagnostic) {
	for _, d := range diags {
		sink.Report(d)
	}
}

// hasFatal reports whether diags contains at least one error-severity
// diagnostic — a warning (e.g. missing cancellation parameter) does not
// disqualify the handler from discovery.
func hasFatal(diags []diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SevError {
			return true
		}
	}
	return false
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

func typeKey(t types.Type) string {
	return types.TypeString(t, nil)
}

type attrMap map[string]string

func (a attrMap) intOr(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}
	var n int
	var neg bool
	i := 0
	if len(v) > 0 && v[0] == '-' {
		neg = true
		i = 1
	}
	if i >= len(v) {
		return def
	}
	for ; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return def
		}
		n = n*10 + int(v[i]-'0')
	}
	if neg {
		n = -n
	}
	return n
}

// parseAttributeArgs parses a marker's argument string, e.g.
// `name="Create" priority=5 scope=Scoped`, into a key/value map. Keys are
// lower-cased; quoted string values have their quotes stripped.
func parseAttributeArgs(args string) attrMap {
	out := make(attrMap)
	for _, field := range splitArgs(args) {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.Trim(strings.TrimSpace(val), `"`)
		if key != "" {
			out[key] = val
		}
	}
	return out
}

// splitArgs splits on whitespace and commas while keeping quoted strings
// intact (no quoted value in the supported attribute grammar contains a
// space, so a simple rune scan suffices).
func splitArgs(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case !inQuote && (r == ' ' || r == ',' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}

func finalize(out partial, sink diag.Sink) Result {
	handlers := detectDuplicates(out.handlers, sink)
	return Result{Handlers: handlers, Interfaces: out.interfaces}
}
