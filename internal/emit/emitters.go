package emit

// All returns the fixed set of code emitters in descending Priority() order
// (spec §4.7). The Pipeline Orchestrator (C9) re-sorts them by ascending
// Priority() before running them, so this order is not the run order.
func All() []Emitter {
	return []Emitter{
		DIRegistrationEmitter{},
		OptimizedDispatcherEmitter{},
		NotificationFanoutEmitter{},
		PipelineRegistryEmitter{},
		EndpointMetadataEmitter{},
		HandlerRegistryEmitter{},
	}
}
