package syntaxfilter

import (
	"context"
	"go/parser"
	"go/token"
	"testing"
)

const sampleSource = `package orders

//relay:handle name="createOrder" priority=10
//relay:exposeAsEndpoint route="/orders"
func (h *CreateOrderHandler) Handle(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	return nil, nil
}

//relay:notification
func (h *OrderPlacedLogger) Handle(ctx context.Context, n *OrderPlacedNotification) error {
	return nil
}

func (h *Unrelated) DoStuff() {}

type StructuralHandler struct {
	relay.RequestHandlerFor[*CreateOrderRequest, *CreateOrderResponse]
}

type PlainStruct struct {
	Field int
}
`

func parseSample(t *testing.T) *token.FileSet {
	t.Helper()
	return token.NewFileSet()
}

func TestScanFindsMarkersAndStructuralClasses(t *testing.T) {
	fset := parseSample(t)
	file, err := parser.ParseFile(fset, "sample.go", sampleSource, parser.ParseComments)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	candidates, err := Scan(context.Background(), file)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var methodCount, classCount int
	var sawEndpoint, sawHandle, sawNotification bool
	for _, c := range candidates {
		switch c.Kind {
		case CandidateMethod:
			methodCount++
			switch c.Marker {
			case MarkerHandle:
				sawHandle = true
			case MarkerExposeAsEndpoint:
				sawEndpoint = true
			case MarkerNotification:
				sawNotification = true
			}
		case CandidateClass:
			classCount++
		}
	}

	if methodCount != 3 {
		t.Fatalf("methodCount = %d, want 3 (handle+endpoint on one method, notification on another)", methodCount)
	}
	if !sawHandle || !sawEndpoint || !sawNotification {
		t.Fatalf("missing expected markers: handle=%v endpoint=%v notification=%v", sawHandle, sawEndpoint, sawNotification)
	}
	if classCount != 1 {
		t.Fatalf("classCount = %d, want 1", classCount)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	fset := parseSample(t)
	file, err := parser.ParseFile(fset, "sample.go", sampleSource, parser.ParseComments)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	first, err := Scan(context.Background(), file)
	if err != nil {
		t.Fatalf("Scan (first): %v", err)
	}
	second, err := Scan(context.Background(), file)
	if err != nil {
		t.Fatalf("Scan (second): %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("len(first)=%d != len(second)=%d", len(first), len(second))
	}
	for i := range first {
		if first[i].Node() != second[i].Node() {
			t.Fatalf("candidate %d node differs across scans", i)
		}
	}
}

func TestScanRespectsCancellation(t *testing.T) {
	fset := parseSample(t)
	file, err := parser.ParseFile(fset, "sample.go", sampleSource, parser.ParseComments)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, file); err == nil {
		t.Fatalf("Scan with cancelled context = nil error, want cancellation fault")
	}
}
