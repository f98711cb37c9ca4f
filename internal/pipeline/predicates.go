package pipeline

import (
	"go/types"

	"relaygen/internal/rules"
	"relaygen/internal/semctx"
)

// buildPredicates resolves the three relay marker interfaces
// (Request, Notification, StreamRequest) against sem's loaded package
// graph and wraps them as rules.Predicates using types.Implements. A
// marker interface that cannot be resolved (the relay runtime was never
// imported) yields a predicate that always rejects, which is the correct
// behavior: without the runtime reference there is nothing to implement.
func buildPredicates(sem *semctx.Context) rules.Predicates {
	return rules.Predicates{
		IsRequest:       markerPredicate(sem, "relay.Request"),
		IsNotification:  markerPredicate(sem, "relay.Notification"),
		IsStreamRequest: markerPredicate(sem, "relay.StreamRequest"),
	}
}

func markerPredicate(sem *semctx.Context, fqn string) func(types.Type) bool {
	obj, ok, err := sem.FindType(fqn)
	if err != nil || !ok {
		return func(types.Type) bool { return false }
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return func(types.Type) bool { return false }
	}
	return func(t types.Type) bool {
		return types.Implements(t, iface) || types.Implements(types.NewPointer(t), iface)
	}
}
