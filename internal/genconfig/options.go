// Package genconfig implements the Configuration Validator (C6): the
// Generation Options struct and its bounds/identifier-legality checks.
package genconfig

// Options configures a single generation run (spec §3).
type Options struct {
	MaxDegreeOfParallelism int
	CustomNamespace        string // empty means "not set"
	AssemblyName           string

	EnableDI                     bool
	EnableHandlerRegistry        bool
	EnableOptimizedDispatcher    bool
	EnableNotificationDispatcher bool
	EnablePipelineRegistry       bool
	EnableEndpointMetadata       bool

	IncludeDebugInfo               bool
	IncludeDocumentation           bool
	EnableNullableContext          bool
	UseAggressiveInlining          bool
	EnablePerformanceOptimizations bool
	EnableKeyedServices            bool
}

// Default returns the documented default Options (spec §3, "Boolean
// switches... Default all true").
func Default() Options {
	return Options{
		MaxDegreeOfParallelism:         4,
		AssemblyName:                   "Relay.Generated",
		EnableDI:                       true,
		EnableHandlerRegistry:          true,
		EnableOptimizedDispatcher:      true,
		EnableNotificationDispatcher:   true,
		EnablePipelineRegistry:         true,
		EnableEndpointMetadata:         true,
		IncludeDebugInfo:               false,
		IncludeDocumentation:           true,
		EnableNullableContext:          true,
		UseAggressiveInlining:          true,
		EnablePerformanceOptimizations: true,
		EnableKeyedServices:            true,
	}
}

// AnyEmitterEnabled reports whether at least one emitter switch is set.
func (o Options) AnyEmitterEnabled() bool {
	return o.EnableDI || o.EnableHandlerRegistry || o.EnableOptimizedDispatcher ||
		o.EnableNotificationDispatcher || o.EnablePipelineRegistry || o.EnableEndpointMetadata
}
