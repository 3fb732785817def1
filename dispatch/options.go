package dispatch

import "reflect"

// Option configures a Mediator instance.
type Option func(*Mediator)

// WithDefaultStrategy selects the multicast strategy used by Publish.
func WithDefaultStrategy(s Strategy) Option {
	return func(m *Mediator) { m.strategy = s }
}

// WithAdapterBuiltHook registers a callback invoked once for every dispatch
// adapter the Mediator constructs.
func WithAdapterBuiltHook(fn func(messageType reflect.Type)) Option {
	return func(m *Mediator) { m.onBuilt = fn }
}
