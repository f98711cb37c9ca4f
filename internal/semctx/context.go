// Package semctx implements the Semantic Context (C1): a cached,
// concurrency-safe view over a loaded Go package's syntax and type
// information, plus cooperative cancellation.
package semctx

import (
	"context"
	"fmt"
	"go/ast"
	"go/types"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/packages"
)

// runtimeImportPath is the import path whose presence in the loaded
// package's dependency graph signals a live relay runtime reference.
const runtimeImportPath = "relay"

// Context owns a reference to one loaded package's parsed program and
// type information. It never mutates that model — every cache here is a
// read-through memoization layer, not a copy of authoritative data.
type Context struct {
	Pkg *packages.Package

	ctx context.Context

	modelGroup singleflight.Group
	modelMu    sync.RWMutex
	models     map[*ast.File]*types.Info

	typeGroup singleflight.Group
	typeMu    sync.RWMutex
	types     map[string]types.Object // nil value == cached negative lookup

	refOnce sync.Once
	refVal  bool
}

// New constructs a Semantic Context bound to a loaded package and a
// cancellation-carrying context.Context.
func New(ctx context.Context, pkg *packages.Package) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Pkg:    pkg,
		ctx:    ctx,
		models: make(map[*ast.File]*types.Info),
		types:  make(map[string]types.Object),
	}
}

// CheckCancel returns a cancellation fault if the context has been
// cancelled. Callers must check this before every cache-miss computation
// (spec §4.2/§5) — it is never swallowed by a caller's error handling.
func (c *Context) CheckCancel() error {
	if err := c.ctx.Err(); err != nil {
		return fmt.Errorf("relay: cancelled: %w", err)
	}
	return nil
}

// GetSemanticModel returns the *types.Info for tree, memoized so the
// first caller computes it and every other concurrent caller observes the
// same, fully initialized instance (P2).
func (c *Context) GetSemanticModel(tree *ast.File) (*types.Info, error) {
	c.modelMu.RLock()
	if info, ok := c.models[tree]; ok {
		c.modelMu.RUnlock()
		return info, nil
	}
	c.modelMu.RUnlock()

	if err := c.CheckCancel(); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%p", tree)
	v, err, _ := c.modelGroup.Do(key, func() (any, error) {
		c.modelMu.RLock()
		if info, ok := c.models[tree]; ok {
			c.modelMu.RUnlock()
			return info, nil
		}
		c.modelMu.RUnlock()

		if c.Pkg == nil || c.Pkg.TypesInfo == nil {
			return nil, fmt.Errorf("relay: no type information available for package %q", pkgID(c.Pkg))
		}
		info := c.Pkg.TypesInfo

		c.modelMu.Lock()
		c.models[tree] = info
		c.modelMu.Unlock()
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Info), nil
}

// FindType resolves fqn (a package-qualified identifier, e.g.
// "example.com/orders.CreateOrderRequest") to its types.Object, memoizing
// both positive and negative results so repeated failing lookups are
// cheap (spec §4.2).
func (c *Context) FindType(fqn string) (types.Object, bool, error) {
	c.typeMu.RLock()
	if obj, ok := c.types[fqn]; ok {
		c.typeMu.RUnlock()
		return obj, obj != nil, nil
	}
	c.typeMu.RUnlock()

	if err := c.CheckCancel(); err != nil {
		return nil, false, err
	}

	v, err, _ := c.typeGroup.Do(fqn, func() (any, error) {
		c.typeMu.RLock()
		if obj, ok := c.types[fqn]; ok {
			c.typeMu.RUnlock()
			return obj, nil
		}
		c.typeMu.RUnlock()

		obj := c.resolve(fqn)
		c.typeMu.Lock()
		c.types[fqn] = obj // nil stored deliberately: negative cache entry
		c.typeMu.Unlock()
		return obj, nil
	})
	if err != nil {
		return nil, false, err
	}
	obj, _ := v.(types.Object)
	return obj, obj != nil, nil
}

func (c *Context) resolve(fqn string) types.Object {
	if c.Pkg == nil || c.Pkg.Types == nil {
		return nil
	}
	path, name := "", fqn
	if idx := lastDot(fqn); idx >= 0 {
		path, name = fqn[:idx], fqn[idx+1:]
	}
	if path == "" || c.Pkg.Types.Path() == path {
		if obj := c.Pkg.Types.Scope().Lookup(name); obj != nil {
			return obj
		}
	}
	for _, imp := range c.Pkg.Imports {
		if imp.Types == nil || (path != "" && imp.Types.Path() != path) {
			continue
		}
		if obj := imp.Types.Scope().Lookup(name); obj != nil {
			return obj
		}
	}
	return nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// HasRuntimeReference reports whether the compilation references the
// relay runtime package, computed lazily exactly once (P3).
func (c *Context) HasRuntimeReference() bool {
	c.refOnce.Do(func() {
		c.refVal = c.computeHasRuntimeReference()
	})
	return c.refVal
}

func (c *Context) computeHasRuntimeReference() bool {
	if c.Pkg == nil {
		return false
	}
	if c.Pkg.PkgPath == runtimeImportPath {
		return true
	}
	seen := make(map[string]bool)
	var walk func(p *packages.Package) bool
	walk = func(p *packages.Package) bool {
		if p == nil || seen[p.PkgPath] {
			return false
		}
		seen[p.PkgPath] = true
		if p.PkgPath == runtimeImportPath {
			return true
		}
		for _, imp := range p.Imports {
			if walk(imp) {
				return true
			}
		}
		return false
	}
	return walk(c.Pkg)
}

func pkgID(p *packages.Package) string {
	if p == nil {
		return "<nil>"
	}
	return p.PkgPath
}
