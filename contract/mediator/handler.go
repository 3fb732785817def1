package mediator

import "context"

// SignalHandler handles signals of type S and returns a result of type R.
// Implementations must be safe for concurrent use by multiple goroutines.
type SignalHandler[S Signal[R], R any] interface {
	Handle(ctx context.Context, s S) (R, error)
}

// SignalHandlerFunc adapts a function to a SignalHandler.
type SignalHandlerFunc[S Signal[R], R any] func(ctx context.Context, s S) (R, error)

func (f SignalHandlerFunc[S, R]) Handle(ctx context.Context, s S) (R, error) { return f(ctx, s) }

// NotificationHandler handles notifications of type N.
// Implementations may be invoked concurrently depending on the publish strategy.
type NotificationHandler[N Notification] interface {
	Handle(ctx context.Context, n N) error
}

// NotificationHandlerFunc adapts a function to a NotificationHandler.
type NotificationHandlerFunc[N Notification] func(ctx context.Context, n N) error

func (f NotificationHandlerFunc[N]) Handle(ctx context.Context, n N) error { return f(ctx, n) }
