package emit

import (
	"go/token"
	"go/types"
	"strings"
	"testing"

	"relaygen/internal/discovery"
	"relaygen/internal/genconfig"
)

func namedStructE(path, name string) *types.Named {
	pkg := types.NewPackage(path, path)
	tn := types.NewTypeName(token.NoPos, pkg, name, nil)
	return types.NewNamed(tn, types.NewStruct(nil, nil), nil)
}

func requestFunc(recvTypeName, methodName string) *types.Func {
	recvPkg := types.NewPackage("example.com/app", "app")
	recvNamed := namedStructE("example.com/app", recvTypeName)
	recv := types.NewVar(token.NoPos, recvPkg, "h", types.NewPointer(recvNamed))
	sig := types.NewSignatureType(recv, nil, nil, types.NewTuple(), types.NewTuple(), false)
	return types.NewFunc(token.NoPos, recvPkg, methodName, sig)
}

func sampleModel() Model {
	reqType := namedStructE("example.com/app", "Ping")
	respType := namedStructE("example.com/app", "Pong")
	noteType := namedStructE("example.com/app", "Created")

	handlers := []discovery.HandlerRecord{
		{
			Kind:         discovery.KindRequest,
			Func:         requestFunc("PingHandler", "CreatePing"),
			Name:         "Create",
			Priority:     5,
			RequestType:  reqType,
			ResponseType: respType,
		},
		{
			Kind:        discovery.KindNotification,
			Func:        requestFunc("CreatedHandlerA", "OnCreated"),
			RequestType: noteType,
		},
		{
			Kind:        discovery.KindNotification,
			Func:        requestFunc("CreatedHandlerB", "AlsoOnCreated"),
			RequestType: noteType,
		},
		{
			Kind:        discovery.KindEndpoint,
			Func:        requestFunc("PingHandler", "CreatePing"),
			Route:       "/ping",
			RequestType: reqType,
		},
		{
			Kind:  discovery.KindPipeline,
			Func:  requestFunc("LoggingBehavior", "Handle"),
			Order: 1,
			Scope: "Global",
		},
	}

	return Model{Handlers: handlers, Options: genconfig.Default(), Namespace: "generated"}
}

func TestAllEmittersCanEmitAndRenderNonEmpty(t *testing.T) {
	m := sampleModel()
	for _, e := range All() {
		if !e.CanEmit(m) {
			t.Errorf("%s: CanEmit = false, want true for sample model", e.Name())
			continue
		}
		src, err := e.Emit(m)
		if err != nil {
			t.Errorf("%s: Emit: %v", e.Name(), err)
			continue
		}
		if !strings.Contains(src, "package generated") {
			t.Errorf("%s: output missing package clause:\n%s", e.Name(), src)
		}
		if !strings.Contains(src, "DO NOT EDIT") {
			t.Errorf("%s: output missing generated-file marker", e.Name())
		}
	}
}

func TestNotificationFanoutGroupsMultipleHandlers(t *testing.T) {
	m := sampleModel()
	src, err := NotificationFanoutEmitter{}.Emit(m)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Count(src, "g.Go(func() error {") != 2 {
		t.Fatalf("expected both notification handlers to fan out, got:\n%s", src)
	}
}

func TestDIRegistrationSkipsNonDIKinds(t *testing.T) {
	m := sampleModel()
	src, err := DIRegistrationEmitter{}.Emit(m)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Count(src, "reg.Register(") != 4 {
		t.Fatalf("expected the root dispatcher singleton plus one registration per handler type (PingHandler, CreatedHandlerA, CreatedHandlerB; the pipeline behavior has no request type and is skipped), got:\n%s", src)
	}
	if !strings.Contains(src, `reg.Register("relay.Relay",`) {
		t.Fatalf("expected a root dispatcher singleton registration, got:\n%s", src)
	}
}

func TestEmittersDisabledByOptions(t *testing.T) {
	m := sampleModel()
	m.Options.EnableDI = false
	if DIRegistrationEmitter{}.CanEmit(m) {
		t.Fatalf("CanEmit = true with EnableDI=false")
	}
}
