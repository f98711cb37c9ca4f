package main

import (
	"os"

	"github.com/BurntSushi/toml"

	"relaygen/internal/genconfig"
)

// fileConfig mirrors genconfig.Options for TOML decoding — its field names
// are the on-disk snake_case keys a .relaygen.toml project file declares.
type fileConfig struct {
	MaxDegreeOfParallelism int    `toml:"max_degree_of_parallelism"`
	CustomNamespace        string `toml:"custom_namespace"`
	AssemblyName           string `toml:"assembly_name"`

	EnableDI                     *bool `toml:"enable_di"`
	EnableHandlerRegistry        *bool `toml:"enable_handler_registry"`
	EnableOptimizedDispatcher    *bool `toml:"enable_optimized_dispatcher"`
	EnableNotificationDispatcher *bool `toml:"enable_notification_dispatcher"`
	EnablePipelineRegistry       *bool `toml:"enable_pipeline_registry"`
	EnableEndpointMetadata       *bool `toml:"enable_endpoint_metadata"`

	IncludeDebugInfo               *bool `toml:"include_debug_info"`
	IncludeDocumentation           *bool `toml:"include_documentation"`
	EnableNullableContext          *bool `toml:"enable_nullable_context"`
	UseAggressiveInlining          *bool `toml:"use_aggressive_inlining"`
	EnablePerformanceOptimizations *bool `toml:"enable_performance_optimizations"`
	EnableKeyedServices            *bool `toml:"enable_keyed_services"`
}

// loadOptions reads path (if present) and overlays it onto genconfig's
// documented defaults; a missing file is not an error — a project that
// never wrote a .relaygen.toml simply gets the defaults (spec §3).
func loadOptions(path string) (genconfig.Options, error) {
	opts := genconfig.Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, err
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return opts, err
	}

	if fc.MaxDegreeOfParallelism != 0 {
		opts.MaxDegreeOfParallelism = fc.MaxDegreeOfParallelism
	}
	if fc.CustomNamespace != "" {
		opts.CustomNamespace = fc.CustomNamespace
	}
	if fc.AssemblyName != "" {
		opts.AssemblyName = fc.AssemblyName
	}

	applyBool(&opts.EnableDI, fc.EnableDI)
	applyBool(&opts.EnableHandlerRegistry, fc.EnableHandlerRegistry)
	applyBool(&opts.EnableOptimizedDispatcher, fc.EnableOptimizedDispatcher)
	applyBool(&opts.EnableNotificationDispatcher, fc.EnableNotificationDispatcher)
	applyBool(&opts.EnablePipelineRegistry, fc.EnablePipelineRegistry)
	applyBool(&opts.EnableEndpointMetadata, fc.EnableEndpointMetadata)
	applyBool(&opts.IncludeDebugInfo, fc.IncludeDebugInfo)
	applyBool(&opts.IncludeDocumentation, fc.IncludeDocumentation)
	applyBool(&opts.EnableNullableContext, fc.EnableNullableContext)
	applyBool(&opts.UseAggressiveInlining, fc.UseAggressiveInlining)
	applyBool(&opts.EnablePerformanceOptimizations, fc.EnablePerformanceOptimizations)
	applyBool(&opts.EnableKeyedServices, fc.EnableKeyedServices)

	return opts, nil
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
