package diag

import (
	"fmt"
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag is an append-only, thread-safe collector of diagnostics (C3).
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	maximum uint32
}

// NewBag creates a Bag with a capacity limit; maximum <= 0 means unbounded.
func NewBag(maximum int) *Bag {
	if maximum <= 0 {
		return &Bag{maximum: 0}
	}
	limit, err := safecast.Conv[uint32](maximum)
	if err != nil {
		panic(fmt.Errorf("diag: bag maximum overflow: %w", err))
	}
	return &Bag{items: make([]Diagnostic, 0, limit), maximum: limit}
}

// Report appends a diagnostic. No deduplication is performed (spec §4.5);
// concurrent callers are serialized by an internal mutex.
func (b *Bag) Report(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maximum > 0 {
		count, err := safecast.Conv[uint32](len(b.items))
		if err == nil && count >= b.maximum {
			return
		}
	}
	b.items = append(b.items, d)
}

// Snapshot returns a stable, independent copy of the collected diagnostics.
func (b *Bag) Snapshot() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of diagnostics currently held.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasErrors reports whether any diagnostic has severity Error.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics deterministically: by file, then offset, then
// severity (descending), then id (ascending) — mirrors the teacher's
// Bag.Sort ordering rationale, adapted to token.Position fields.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Pos.Filename != dj.Pos.Filename {
			return di.Pos.Filename < dj.Pos.Filename
		}
		if di.Pos.Offset != dj.Pos.Offset {
			return di.Pos.Offset < dj.Pos.Offset
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.ID < dj.ID
	})
}

// Merge appends other's items into b, growing the capacity limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	items := other.Snapshot()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maximum > 0 {
		total, err := safecast.Conv[uint32](len(b.items) + len(items))
		if err == nil && total > b.maximum {
			b.maximum = total
		}
	}
	b.items = append(b.items, items...)
}
