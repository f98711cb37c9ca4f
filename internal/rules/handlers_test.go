package rules

import (
	"go/token"
	"go/types"
	"testing"
)

func contextType() types.Type {
	pkg := types.NewPackage("context", "context")
	name := types.NewTypeName(token.NoPos, pkg, "Context", nil)
	named := types.NewNamed(name, types.NewInterfaceType(nil, nil), nil)
	return named
}

func errorType() types.Type {
	return types.Universe.Lookup("error").Type()
}

func namedStruct(path, name string) *types.Named {
	pkg := types.NewPackage(path, path)
	tn := types.NewTypeName(token.NoPos, pkg, name, nil)
	return types.NewNamed(tn, types.NewStruct(nil, nil), nil)
}

func iterSeq2(elem types.Type) types.Type {
	pkg := types.NewPackage("iter", "iter")
	tparamT := types.NewTypeParam(types.NewTypeName(token.NoPos, nil, "T", nil), types.NewInterfaceType(nil, nil))
	tparamE := types.NewTypeParam(types.NewTypeName(token.NoPos, nil, "E", nil), types.NewInterfaceType(nil, nil))
	tn := types.NewTypeName(token.NoPos, pkg, "Seq2", nil)
	orig := types.NewNamed(tn, types.NewInterfaceType(nil, nil), nil)
	orig.SetTypeParams([]*types.TypeParam{tparamT, tparamE})

	inst, err := types.Instantiate(nil, orig, []types.Type{elem, errorType()}, false)
	if err != nil {
		panic(err)
	}
	return inst
}

func param(name string, t types.Type) *types.Var {
	return types.NewParam(token.NoPos, nil, name, t)
}

func sig(params []*types.Var, results []*types.Var) *types.Signature {
	return types.NewSignatureType(nil, nil, nil, types.NewTuple(params...), types.NewTuple(results...), false)
}

func TestCheckRequestHandlerAdmits(t *testing.T) {
	reqType := namedStruct("example.com/app", "Ping")
	preds := Predicates{IsRequest: func(t types.Type) bool { return types.Identical(t, reqType) }}

	s := sig(
		[]*types.Var{param("ctx", contextType()), param("req", reqType)},
		[]*types.Var{param("", namedStruct("example.com/app", "Pong")), param("", errorType())},
	)

	shape, diags := CheckRequestHandler(s, token.Position{}, preds)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if shape.Response == nil {
		t.Fatalf("expected a non-nil Response in the shape")
	}
}

func TestCheckRequestHandlerRejectsWrongParamType(t *testing.T) {
	reqType := namedStruct("example.com/app", "Ping")
	other := namedStruct("example.com/app", "NotARequest")
	preds := Predicates{IsRequest: func(t types.Type) bool { return types.Identical(t, reqType) }}

	s := sig(
		[]*types.Var{param("ctx", contextType()), param("req", other)},
		[]*types.Var{param("", errorType())},
	)

	_, diags := CheckRequestHandler(s, token.Position{}, preds)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a non-request parameter type")
	}
}

func TestCheckRequestHandlerMissingParam(t *testing.T) {
	s := sig([]*types.Var{param("ctx", contextType())}, []*types.Var{param("", errorType())})
	_, diags := CheckRequestHandler(s, token.Position{}, Predicates{})
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a missing request parameter")
	}
}

func TestCheckStreamHandlerAdmits(t *testing.T) {
	reqType := namedStruct("example.com/app", "Tail")
	preds := Predicates{IsStreamRequest: func(t types.Type) bool { return types.Identical(t, reqType) }}

	s := sig(
		[]*types.Var{param("ctx", contextType()), param("req", reqType)},
		[]*types.Var{param("", iterSeq2(types.Typ[types.String]))},
	)

	shape, diags := CheckStreamHandler(s, token.Position{}, preds)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if shape.Response == nil {
		t.Fatalf("expected stream element type to be recovered")
	}
}

func TestCheckStreamHandlerRejectsNonIterReturn(t *testing.T) {
	reqType := namedStruct("example.com/app", "Tail")
	s := sig(
		[]*types.Var{param("ctx", contextType()), param("req", reqType)},
		[]*types.Var{param("", errorType())},
	)
	_, diags := CheckStreamHandler(s, token.Position{}, Predicates{})
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a non iter.Seq2 return type")
	}
}

func TestCheckNotificationHandler(t *testing.T) {
	noteType := namedStruct("example.com/app", "Created")
	preds := Predicates{IsNotification: func(t types.Type) bool { return types.Identical(t, noteType) }}

	okSig := sig(
		[]*types.Var{param("ctx", contextType()), param("n", noteType)},
		[]*types.Var{param("", errorType())},
	)
	if _, diags := CheckNotificationHandler(okSig, token.Position{}, preds); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	badSig := sig(
		[]*types.Var{param("ctx", contextType()), param("n", noteType)},
		[]*types.Var{param("", types.Typ[types.String]), param("", errorType())},
	)
	if _, diags := CheckNotificationHandler(badSig, token.Position{}, preds); len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a non void/error return")
	}
}

func TestCheckEndpoint(t *testing.T) {
	one := sig([]*types.Var{param("req", namedStruct("example.com/app", "Ping"))}, nil)
	if diags := CheckEndpoint(one, token.Position{}); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	two := sig(
		[]*types.Var{param("ctx", contextType()), param("req", namedStruct("example.com/app", "Ping"))},
		nil,
	)
	if diags := CheckEndpoint(two, token.Position{}); len(diags) == 0 {
		t.Fatalf("expected a diagnostic for an endpoint with more than one parameter")
	}
}

func TestCheckPipelineThreeParamForm(t *testing.T) {
	next := types.NewSignatureType(nil, nil, nil, nil, types.NewTuple(param("", errorType())), false)
	s := sig(
		[]*types.Var{
			param("req", namedStruct("example.com/app", "Ping")),
			param("next", next),
			param("ctx", contextType()),
		},
		[]*types.Var{param("", errorType())},
	)
	if diags := CheckPipeline(s, token.Position{}); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
}

func TestCheckPipelineRejectsMissingTrailingContext(t *testing.T) {
	s := sig(
		[]*types.Var{param("req", namedStruct("example.com/app", "Ping")), param("n", types.Typ[types.Int])},
		[]*types.Var{param("", errorType())},
	)
	if diags := CheckPipeline(s, token.Position{}); len(diags) == 0 {
		t.Fatalf("expected a diagnostic when the last parameter is not context.Context")
	}
}

func TestCheckPriorityAndAccessibility(t *testing.T) {
	if d := CheckPriority(0, token.Position{}); d != nil {
		t.Fatalf("unexpected diagnostic for priority 0: %+v", d)
	}
	if d := CheckPriority(5000, token.Position{}); d == nil {
		t.Fatalf("expected a diagnostic for out-of-range priority")
	}
	if d := CheckAccessibility(true, token.Position{}); d != nil {
		t.Fatalf("unexpected diagnostic for an exported handler: %+v", d)
	}
	if d := CheckAccessibility(false, token.Position{}); d == nil {
		t.Fatalf("expected a diagnostic for an unexported handler")
	}
}
