// Package pipeline implements the Pipeline Orchestrator (C9): it drives
// the other eight components through one generation run — validate
// options, scan, discover, run the global validation pass, then execute
// every enabled emitter in isolation — and assembles their output into the
// file set a caller writes to disk (spec §4.9).
package pipeline

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"sync"

	"golang.org/x/tools/go/packages"

	"relaygen/internal/diag"
	"relaygen/internal/discovery"
	"relaygen/internal/emit"
	"relaygen/internal/emit/fallback"
	"relaygen/internal/genconfig"
	"relaygen/internal/semctx"
	"relaygen/internal/syntaxfilter"
)

// Result is what one generation run produces: the rendered output files,
// keyed by their intended file name, plus every diagnostic collected along
// the way (spec §6, "downstream interface").
type Result struct {
	Files       map[string]string
	Diagnostics []diag.Diagnostic
}

// GeneratorError reports that the run completed but at least one error
// diagnostic was collected (spec §7). It is never returned for warnings
// alone.
type GeneratorError struct {
	Diagnostics []diag.Diagnostic
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("relaygen: generation reported %d error diagnostic(s)", len(e.Diagnostics))
}

// CriticalFault reports a condition the orchestrator cannot isolate or
// recover from — cancellation, a nil input package, or a scan or
// discovery failure — as distinct from a
// per-emitter failure, which is always absorbed by the Fallback Emitter
// instead of aborting the run (spec §7).
type CriticalFault struct {
	Cause error
}

func (e *CriticalFault) Error() string { return fmt.Sprintf("relaygen: critical fault: %v", e.Cause) }
func (e *CriticalFault) Unwrap() error { return e.Cause }

// FaultPolicy lets a caller (principally a test) force a named emitter to
// fail, exercising the fallback path deterministically. It replaces the
// spec's "test-only force-exception" global toggle with an explicit,
// injected dependency — production callers pass NoFaults.
type FaultPolicy interface {
	ShouldFault(emitterName string) (err error, inject bool)
}

// NoFaults never forces a failure.
type NoFaults struct{}

func (NoFaults) ShouldFault(string) (error, bool) { return nil, false }

// Run executes one full generation pass over pkg and returns the rendered
// files plus every diagnostic collected. A non-nil error is always either
// *GeneratorError (generation completed, but reported hard errors) or
// *CriticalFault (generation could not complete at all).
func Run(ctx context.Context, pkg *packages.Package, opts genconfig.Options, policy FaultPolicy) (Result, error) {
	if policy == nil {
		policy = NoFaults{}
	}
	if pkg == nil {
		return Result{}, &CriticalFault{Cause: fmt.Errorf("relaygen: nil package")}
	}

	bag := diag.NewBag(0)
	validated := genconfig.Validate(&opts, bag)

	sem := semctx.New(ctx, pkg)
	if err := sem.CheckCancel(); err != nil {
		return Result{}, &CriticalFault{Cause: err}
	}

	candidates, err := scanAll(ctx, pkg.Syntax)
	if err != nil {
		return Result{}, &CriticalFault{Cause: err}
	}

	preds := buildPredicates(sem)
	discResult, err := discovery.Discover(ctx, sem, candidates, preds, bag, validated.MaxDegreeOfParallelism)
	if err != nil {
		return Result{}, &CriticalFault{Cause: err}
	}

	if len(discResult.Handlers) == 0 && sem.HasRuntimeReference() {
		bag.Report(diag.New(diag.NoHandlers, token.Position{}, "no handlers were discovered in a package that references the relay runtime"))
	}

	model := emit.Model{
		Handlers:   discResult.Handlers,
		Interfaces: discResult.Interfaces,
		Options:    validated,
		Namespace:  validated.CustomNamespace,
	}

	files := runEmitters(model, policy, bag)

	bag.Sort()
	diags := bag.Snapshot()
	if bag.HasErrors() {
		return Result{Files: files, Diagnostics: diags}, &GeneratorError{Diagnostics: diags}
	}
	return Result{Files: files, Diagnostics: diags}, nil
}

func scanAll(ctx context.Context, trees []*ast.File) ([]syntaxfilter.Candidate, error) {
	var all []syntaxfilter.Candidate
	for _, tree := range trees {
		if tree == nil {
			continue
		}
		found, err := syntaxfilter.Scan(ctx, tree)
		if err != nil {
			return nil, err
		}
		all = append(all, found...)
	}
	return all, nil
}

// runEmitters runs every emitter the options enable, each isolated behind
// a manual recover so a single broken emitter substitutes the Fallback
// Emitter's output for its file rather than losing the rest of the run
// (spec §4.9 — deliberately not errgroup, which would cancel every
// sibling goroutine on the first error).
func runEmitters(model emit.Model, policy FaultPolicy, sink diag.Sink) map[string]string {
	selected := make([]emit.Emitter, 0, len(emit.All()))
	for _, e := range emit.All() {
		if e.CanEmit(model) {
			selected = append(selected, e)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Priority() < selected[j].Priority()
	})

	workers := clamp(model.Options.MaxDegreeOfParallelism, 1, 8)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	files := make(map[string]string, len(selected))

	for _, e := range selected {
		e := e
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			src := runOneEmitter(e, model, policy, sink)
			mu.Lock()
			files[e.OutputFile()] = src
			mu.Unlock()
		}()
	}
	wg.Wait()
	return files
}

// runOneEmitter runs one emitter in isolation, reporting a RELAY_GEN_001
// (diag.GeneratorError) diagnostic for every fallback substitution — a
// forced fault, an Emit error, or a recovered panic (spec §7/P4).
func runOneEmitter(e emit.Emitter, model emit.Model, policy FaultPolicy, sink diag.Sink) (out string) {
	substitute := func(cause error) string {
		if e.Name() == (emit.OptimizedDispatcherEmitter{}).Name() {
			return fallback.Dispatcher(packageNameOf(model), cause.Error())
		}
		src, ferr := fallback.Emit(packageNameOf(model), e.Name(), cause)
		if ferr != nil {
			return fallback.Dispatcher(packageNameOf(model), ferr.Error())
		}
		return src
	}
	defer func() {
		if r := recover(); r != nil {
			sink.Report(diag.New(diag.GeneratorError, token.Position{}, fmt.Sprintf(
				"emitter %q panicked: %v", e.Name(), r)))
			out = substitute(fmt.Errorf("panic: %v", r))
		}
	}()

	if err, inject := policy.ShouldFault(e.Name()); inject {
		sink.Report(diag.New(diag.GeneratorError, token.Position{}, fmt.Sprintf(
			"emitter %q failed: %v", e.Name(), err)))
		return substitute(err)
	}

	src, err := e.Emit(model)
	if err != nil {
		sink.Report(diag.New(diag.GeneratorError, token.Position{}, fmt.Sprintf(
			"emitter %q failed: %v", e.Name(), err)))
		return substitute(err)
	}
	return src
}

func packageNameOf(model emit.Model) string {
	if model.Namespace != "" {
		return model.Namespace
	}
	return "relaygenerated"
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
