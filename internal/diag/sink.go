package diag

// Sink is the contract C5/C9 report diagnostics through (C3). *Bag
// satisfies it directly.
type Sink interface {
	Report(d Diagnostic)
}

// NopSink discards every diagnostic reported to it; useful for rule-only
// unit tests that do not care about the sink side effect.
type NopSink struct{}

func (NopSink) Report(Diagnostic) {}
