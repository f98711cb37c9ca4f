// Package relay defines the dispatch-runtime contract that generated
// artifacts compile against. It is intentionally thin: this module
// analyzes and emits source, it does not implement a mediator runtime.
package relay

import (
	"context"
	"iter"
)

// Request marks a type as a request with no declared response. Handlers
// implement Handle(ctx, T) error for these.
type Request interface {
	isRelayRequest()
}

// RequestOf embeds into a concrete request type to mark it as carrying a
// TResponse result, e.g.:
//
//	type CreateOrderRequest struct {
//		relay.RequestOf[*CreateOrderResponse]
//		...
//	}
type RequestOf[TResponse any] struct{}

func (RequestOf[TResponse]) isRelayRequest() {}

// Notification marks a type as a fan-out notification.
type Notification interface {
	isRelayNotification()
}

// NotificationMarker embeds into a concrete notification type.
type NotificationMarker struct{}

func (NotificationMarker) isRelayNotification() {}

// StreamRequest marks a type as the request half of a stream handler.
type StreamRequest interface {
	isRelayStreamRequest()
}

// StreamRequestOf embeds into a concrete stream request type to mark its
// element type TItem.
type StreamRequestOf[TItem any] struct{}

func (StreamRequestOf[TItem]) isRelayStreamRequest() {}

// RequestHandlerDelegate is the "next" continuation a pipeline behavior
// invokes to continue the request down the pipeline.
type RequestHandlerDelegate[TResponse any] func(ctx context.Context) (TResponse, error)

// StreamHandlerDelegate is the streaming analogue of RequestHandlerDelegate.
type StreamHandlerDelegate[TItem any] func(ctx context.Context) iter.Seq2[TItem, error]

// Relay is the root dispatcher that generated registration code wires up.
// Send dispatches a request to its handler, Publish fans a notification
// out to every registered handler, Stream dispatches a stream request to
// its handler and returns its lazy element sequence.
type Relay interface {
	Send(ctx context.Context, req any) (any, error)
	Publish(ctx context.Context, note any) error
	Stream(ctx context.Context, req any) iter.Seq2[any, error]
}

// Registrar is satisfied by a dependency-injection container capable of
// binding a string key to a constructor. Generated DI registration code
// calls Register once per discovered handler type; it never calls Resolve
// itself, so Registrar does not need to expose one.
type Registrar interface {
	Register(key string, factory func() any)
}
