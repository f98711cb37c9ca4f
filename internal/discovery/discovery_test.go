package discovery

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"golang.org/x/tools/go/packages"

	"relaygen/internal/diag"
	"relaygen/internal/rules"
	"relaygen/internal/semctx"
	"relaygen/internal/syntaxfilter"
)

const sampleSource = `package sample

// relay:handle name="Create" priority=5
func (h *Handler) CreatePing(ctx context.Context, req Ping) (Pong, error) {
	return Pong{}, nil
}

// relay:notification
func (h *Handler) OnCreated(ctx context.Context, n Created) error {
	return nil
}
`

func parseSample(t *testing.T) (*token.FileSet, *ast.File) {
	t.Helper()
	fset := token.NewFileSet()
	tree, err := parser.ParseFile(fset, "sample.go", sampleSource, parser.ParseComments)
	if err != nil {
		t.Fatalf("parser.ParseFile: %v", err)
	}
	return fset, tree
}

func findFunc(tree *ast.File, name string) *ast.FuncDecl {
	for _, decl := range tree.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

func contextTypeD() types.Type {
	pkg := types.NewPackage("context", "context")
	name := types.NewTypeName(token.NoPos, pkg, "Context", nil)
	return types.NewNamed(name, types.NewInterfaceType(nil, nil), nil)
}

func namedStructD(path, name string) *types.Named {
	pkg := types.NewPackage(path, path)
	tn := types.NewTypeName(token.NoPos, pkg, name, nil)
	return types.NewNamed(tn, types.NewStruct(nil, nil), nil)
}

func newFunc(fset *token.FileSet, recvName, methodName string, sig *types.Signature) *types.Func {
	pkg := types.NewPackage("example.com/app", "app")
	return types.NewFunc(token.NoPos, pkg, methodName, sig)
}

func buildSemCtx(fset *token.FileSet, info *types.Info) *semctx.Context {
	pkg := &packages.Package{Fset: fset, TypesInfo: info, PkgPath: "example.com/app"}
	return semctx.New(context.Background(), pkg)
}

func TestDiscoverSequentialClassifiesRequestAndNotification(t *testing.T) {
	fset, tree := parseSample(t)
	createFn := findFunc(tree, "CreatePing")
	notifyFn := findFunc(tree, "OnCreated")

	pingType := namedStructD("example.com/app", "Ping")
	pongType := namedStructD("example.com/app", "Pong")
	createdType := namedStructD("example.com/app", "Created")

	createSig := types.NewSignatureType(
		types.NewVar(token.NoPos, nil, "h", types.NewPointer(namedStructD("example.com/app", "Handler"))),
		nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, nil, "ctx", contextTypeD()), types.NewParam(token.NoPos, nil, "req", pingType)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", pongType), types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false,
	)
	notifySig := types.NewSignatureType(
		types.NewVar(token.NoPos, nil, "h", types.NewPointer(namedStructD("example.com/app", "Handler"))),
		nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, nil, "ctx", contextTypeD()), types.NewParam(token.NoPos, nil, "n", createdType)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false,
	)

	info := &types.Info{Defs: map[*ast.Ident]types.Object{
		createFn.Name: newFunc(fset, "Handler", "CreatePing", createSig),
		notifyFn.Name: newFunc(fset, "Handler", "OnCreated", notifySig),
	}}

	sem := buildSemCtx(fset, info)
	preds := rules.Predicates{
		IsRequest:      func(t types.Type) bool { return types.Identical(t, pingType) },
		IsNotification: func(t types.Type) bool { return types.Identical(t, createdType) },
	}

	candidates := []syntaxfilter.Candidate{
		{Kind: syntaxfilter.CandidateMethod, Func: createFn, Marker: syntaxfilter.MarkerHandle, Args: `name="Create" priority=5`, File: tree},
		{Kind: syntaxfilter.CandidateMethod, Func: notifyFn, Marker: syntaxfilter.MarkerNotification, File: tree},
	}

	bag := diag.NewBag(0)
	result, err := Discover(context.Background(), sem, candidates, preds, bag, 4)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("len(result.Handlers) = %d, want 2 (diagnostics: %v)", len(result.Handlers), bag.Snapshot())
	}

	var sawRequest, sawNotification bool
	for _, h := range result.Handlers {
		switch h.Kind {
		case KindRequest:
			sawRequest = true
			if h.Name != "Create" {
				t.Errorf("request handler Name = %q, want %q", h.Name, "Create")
			}
			if h.Priority != 5 {
				t.Errorf("request handler Priority = %d, want 5", h.Priority)
			}
		case KindNotification:
			sawNotification = true
		}
	}
	if !sawRequest || !sawNotification {
		t.Fatalf("expected one request and one notification handler, got %+v", result.Handlers)
	}
}

func TestDiscoverReportsDuplicateHandler(t *testing.T) {
	fset, tree := parseSample(t)
	createFn := findFunc(tree, "CreatePing")

	pingType := namedStructD("example.com/app", "Ping")
	pongType := namedStructD("example.com/app", "Pong")

	sig := types.NewSignatureType(
		nil, nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, nil, "ctx", contextTypeD()), types.NewParam(token.NoPos, nil, "req", pingType)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", pongType), types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false,
	)
	info := &types.Info{Defs: map[*ast.Ident]types.Object{
		createFn.Name: newFunc(fset, "Handler", "CreatePing", sig),
	}}
	sem := buildSemCtx(fset, info)
	preds := rules.Predicates{IsRequest: func(t types.Type) bool { return types.Identical(t, pingType) }}

	candidates := []syntaxfilter.Candidate{
		{Kind: syntaxfilter.CandidateMethod, Func: createFn, Marker: syntaxfilter.MarkerHandle, File: tree},
		{Kind: syntaxfilter.CandidateMethod, Func: createFn, Marker: syntaxfilter.MarkerHandle, File: tree},
	}

	bag := diag.NewBag(0)
	result, err := Discover(context.Background(), sem, candidates, preds, bag, 4)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("len(result.Handlers) = %d, want 2 — I2 keeps every duplicate record in the model", len(result.Handlers))
	}
	count := 0
	for _, d := range bag.Snapshot() {
		if d.ID == diag.DuplicateHandler {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected a DuplicateHandler diagnostic on each of the 2 bucket members (P6), got %d: %v", count, bag.Snapshot())
	}
}

// TestDiscoverHandleAndEndpointOnSameMethodIsNotADuplicate exercises the
// Open Question resolution in DESIGN.md: a method carrying both Handle and
// ExposeAsEndpoint for the same request type with no name override
// produces two independent Handler Records (one Request, one Endpoint)
// and must never be reported as a duplicate of itself.
func TestDiscoverHandleAndEndpointOnSameMethodIsNotADuplicate(t *testing.T) {
	fset, tree := parseSample(t)
	createFn := findFunc(tree, "CreatePing")

	pingType := namedStructD("example.com/app", "Ping")
	pongType := namedStructD("example.com/app", "Pong")

	// No context.Context parameter, so the single-parameter Endpoint shape
	// rule and the one-non-context-parameter Request shape rule are both
	// satisfiable by the same signature.
	sig := types.NewSignatureType(
		nil, nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, nil, "req", pingType)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", pongType), types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false,
	)
	info := &types.Info{Defs: map[*ast.Ident]types.Object{
		createFn.Name: newFunc(fset, "Handler", "CreatePing", sig),
	}}
	sem := buildSemCtx(fset, info)
	preds := rules.Predicates{IsRequest: func(t types.Type) bool { return types.Identical(t, pingType) }}

	candidates := []syntaxfilter.Candidate{
		{Kind: syntaxfilter.CandidateMethod, Func: createFn, Marker: syntaxfilter.MarkerHandle, File: tree},
		{Kind: syntaxfilter.CandidateMethod, Func: createFn, Marker: syntaxfilter.MarkerExposeAsEndpoint, Args: `route="/ping"`, File: tree},
	}

	bag := diag.NewBag(0)
	result, err := Discover(context.Background(), sem, candidates, preds, bag, 4)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.Handlers) != 2 {
		t.Fatalf("len(result.Handlers) = %d, want 2 (one Request, one Endpoint), diagnostics: %v", len(result.Handlers), bag.Snapshot())
	}

	var sawRequest, sawEndpoint bool
	for _, h := range result.Handlers {
		switch h.Kind {
		case KindRequest:
			sawRequest = true
		case KindEndpoint:
			sawEndpoint = true
		}
	}
	if !sawRequest || !sawEndpoint {
		t.Fatalf("expected one Request and one Endpoint record, got %+v", result.Handlers)
	}

	for _, d := range bag.Snapshot() {
		if d.ID == diag.DuplicateHandler || d.ID == diag.NamedHandlerConflict {
			t.Fatalf("Handle+ExposeAsEndpoint on one method must not be reported as a duplicate, got %v", d)
		}
	}
}

func TestParseAttributeArgs(t *testing.T) {
	attrs := parseAttributeArgs(`name="Create" priority=-5 scope=Scoped`)
	if attrs["name"] != "Create" {
		t.Errorf("name = %q, want %q", attrs["name"], "Create")
	}
	if attrs.intOr("priority", 0) != -5 {
		t.Errorf("priority = %d, want -5", attrs.intOr("priority", 0))
	}
	if attrs["scope"] != "Scoped" {
		t.Errorf("scope = %q, want %q", attrs["scope"], "Scoped")
	}
}
