package diag

import (
	"go/token"
	"testing"
)

func TestBagReportAndSnapshot(t *testing.T) {
	b := NewBag(0)
	b.Report(New(DuplicateHandler, token.Position{Filename: "a.go", Offset: 10}, "dup"))
	b.Report(New(GeneratorError, token.Position{Filename: "a.go", Offset: 1}, "boom"))

	got := b.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(got))
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors() = false, want true")
	}
}

func TestBagCapacityLimit(t *testing.T) {
	b := NewBag(1)
	b.Report(New(Info, token.Position{}, "first"))
	b.Report(New(Info, token.Position{}, "second"))
	if got := b.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1 (capacity should reject the second report)", got)
	}
}

func TestBagSortOrdering(t *testing.T) {
	b := NewBag(0)
	b.Report(New(Info, token.Position{Filename: "b.go", Offset: 5}, "b-info"))
	b.Report(New(GeneratorError, token.Position{Filename: "a.go", Offset: 20}, "a-error-late"))
	b.Report(New(DuplicateHandler, token.Position{Filename: "a.go", Offset: 5}, "a-error-early"))
	b.Sort()

	got := b.Snapshot()
	want := []string{"a-error-early", "a-error-late", "b-info"}
	for i, msg := range want {
		if got[i].Message != msg {
			t.Fatalf("item %d = %q, want %q", i, got[i].Message, msg)
		}
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Report(New(Info, token.Position{}, "one"))
	other := NewBag(0)
	other.Report(New(Info, token.Position{}, "two"))
	other.Report(New(Info, token.Position{}, "three"))

	a.Merge(other)
	if got := a.Len(); got != 3 {
		t.Fatalf("Len() after Merge = %d, want 3", got)
	}
}
